package utils

import (
	"errors"

	"github.com/golang-jwt/jwt"
)

// ParseTokenClaims reads the claims of a bearer token without verifying its
// signature. The marketplace API is the only party holding the signing key;
// the claims are used here for routing and expiry checks only.
func ParseTokenClaims(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SubjectFromClaims returns the user id claim; the API issues it as "sub" or "id".
func SubjectFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "id", "userId"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
