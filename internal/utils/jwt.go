// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims are the claims the API puts into access tokens.
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var ErrNoExpiry = errors.New("token has no expiry")

// ParseTokenClaims decodes the claims of a bearer token without checking its
// signature. The client never holds the signing key; the server stays the
// authority on validity.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser()
	claims := &TokenClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of a bearer token.
func TokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ParseTokenClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether the token's exp is at or before now. Opaque
// tokens and tokens without exp are treated as not expired.
func TokenExpired(tokenString string, now time.Time) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return false
	}
	return !exp.After(now)
}

// TokenExpiresWithin reports whether the token expires within d of now.
func TokenExpiresWithin(tokenString string, now time.Time, d time.Duration) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return false
	}
	return exp.Sub(now) <= d
}
