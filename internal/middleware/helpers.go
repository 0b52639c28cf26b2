// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

func SetCurrentUser(c *gin.Context, u CurrentUser) {
	c.Set(currentUserKey, u)
}

func GetCurrentUser(c *gin.Context) (CurrentUser, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return CurrentUser{}, false
	}
	u, ok := v.(CurrentUser)
	return u, ok
}

// GetIdentityID returns the caller's identity, or false if unauthenticated.
func GetIdentityID(c *gin.Context) (int64, bool) {
	u, ok := GetCurrentUser(c)
	if !ok || u.IdentityID == 0 {
		return 0, false
	}
	return u.IdentityID, true
}

// MustGetCurrentUser panics when Auth did not run.
func MustGetCurrentUser(c *gin.Context) CurrentUser {
	u, ok := GetCurrentUser(c)
	if !ok {
		panic("current user not found in context")
	}
	return u
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, ok := GetCurrentUser(c)
	return ok
}
