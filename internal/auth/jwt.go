// Package auth issues and validates the staff access tokens used by the
// back-office endpoints. Participants never authenticate — their access runs
// through per-registration tokens — so this covers staff and admins only.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the authorization level carried in a staff token.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// ErrInvalidToken covers every validation failure: bad signature, expiry,
// malformed claims. Callers get no more detail than that.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims are the JWT claims embedded in staff access tokens.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates staff access tokens with HMAC-SHA256.
type TokenService struct {
	signingKey []byte
	issuer     string
}

func NewTokenService(signingKey []byte, issuer string) *TokenService {
	return &TokenService{signingKey: signingKey, issuer: issuer}
}

// Issue signs a token for the given staff member.
func (s *TokenService) Issue(staffID uuid.UUID, role Role, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("auth.TokenService.Issue: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
