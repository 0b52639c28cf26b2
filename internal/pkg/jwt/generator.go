// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const defaultRefreshTTL = 60 * 24 * time.Hour

type Generator struct {
	priv       *rsa.PrivateKey
	issuer     string
	audience   string
	kid        string // key id for rotation
	TTL        time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:       priv,
		issuer:     issuer,
		audience:   audience,
		kid:        kid,
		TTL:        ttl,
		RefreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
}

// Generate signs a token for identityID and returns it with its JTI.
func (g *Generator) Generate(identityID int64, role, device, purpose string, ttl time.Duration) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}

	now := g.now()
	jti := ulid.Make().String()

	claims := &Claims{
		IdentityID:     identityID,
		Role:           role,
		Device:         device,
		SessionPurpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   strconv.FormatInt(identityID, 10),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token
func (g *Generator) GenerateAccessToken(identityID int64, role, device string) (string, string, error) {
	return g.Generate(identityID, role, device, PurposeAccess, g.TTL)
}

// GenerateRefreshToken generates a refresh token. Refresh tokens carry no role.
func (g *Generator) GenerateRefreshToken(identityID int64, device string) (string, string, error) {
	return g.Generate(identityID, "", device, PurposeRefresh, g.RefreshTTL)
}
