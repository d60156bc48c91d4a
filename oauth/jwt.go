package oauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtExpiry extracts the "exp" claim from accessToken without verifying its
// signature: the token was just issued by the authorization server over a
// trusted channel, so this is reading metadata, not authenticating.
func jwtExpiry(accessToken string) (time.Time, bool) {
	parser := jwt.NewParser()
	var claims jwt.RegisteredClaims
	_, _, err := parser.ParseUnverified(accessToken, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
