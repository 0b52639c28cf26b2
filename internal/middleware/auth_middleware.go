// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/pkg/jwt"
	"ustaad-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// TokenValidator verifies an access token and its live session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// CurrentUser is the authenticated caller, set by Auth.
type CurrentUser struct {
	IdentityID int64
	JTI        string
	Role       string
	Device     string
}

func (u CurrentUser) IsCustomer() bool { return u.Role == auth.RoleCustomer }
func (u CurrentUser) IsProvider() bool { return u.Role == auth.RoleProvider }

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
	}
}

// Auth is the base authentication middleware that validates JWT tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		SetCurrentUser(c, CurrentUser{
			IdentityID: claims.IdentityID,
			JTI:        claims.ID,
			Role:       claims.Role,
			Device:     claims.Device,
		})
		c.Next()
	}
}

// RequireRole must run after Auth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"user_role":      user.Role,
		})
	}
}

// CustomerOnly returns Auth plus the customer role gate.
func (m *AuthMiddleware) CustomerOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleCustomer),
	}
}

// ProviderOnly returns Auth plus the provider role gate.
func (m *AuthMiddleware) ProviderOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleProvider),
	}
}

// extractToken reads a Bearer header, falling back to ?token= for websocket
// upgrades where browsers cannot set headers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}
