// internal/pkg/jwt/claims.go
package jwt

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

// Claims represents the JWT claims
type Claims struct {
	IdentityID     int64  `json:"identity_id"`
	Role           string `json:"role"` // customer, provider
	Device         string `json:"device,omitempty"`
	SessionPurpose string `json:"session_purpose"` // access, refresh
	jwt.RegisteredClaims
}

// HasRole checks whether the token was issued for one of roles.
func (c *Claims) HasRole(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}
