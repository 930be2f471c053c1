// Package token signs the cookie that ties a browser to its wheel session.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims carries the wheel session ID and the browser's locale.
type SessionClaims struct {
	jwt.RegisteredClaims
	Locale string `json:"loc,omitempty"`
}

// Issue signs a session token valid for ttl from now.
func Issue(sessionID, locale string, secretKey []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Locale: locale,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// Verify checks the signature and expiry of tokenStr at now.
func Verify(tokenStr string, secretKey []byte, now time.Time) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
