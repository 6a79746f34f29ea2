package creds

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the expiry claim from an access token without
// verifying its signature. Verification is the server's job; the client
// only wants to know whether a refresh is likely imminent.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExpiresSoon reports whether the token expires within the given window.
// Tokens without a parseable expiry are never reported as expiring.
func ExpiresSoon(token string, window time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return time.Until(exp) < window
}
