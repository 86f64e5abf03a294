package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects the bearer token's registered claims without
// verifying the signature (the client has no key material) and reports
// whether the exp claim has passed. Tokens without an exp claim never expire
// from the client's point of view.
func TokenExpired(tokenString string, now time.Time) (bool, error) {
	parser := jwt.NewParser()

	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false, fmt.Errorf("malformed token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Before(now), nil
}
