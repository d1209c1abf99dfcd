// Package tokens issues the short-lived signed tokens handed to freshly
// provisioned users so they can set their first password (and to existing
// users for a password reset).
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const purposeSetPassword = "set-password"

var ErrInvalidToken = errors.New("tokens: invalid or expired token")

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// NewSetPasswordToken signs a token allowing the given user to set a password
// within ttl.
func NewSetPasswordToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Purpose: purposeSetPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseSetPasswordToken validates the signature, purpose and expiry and
// returns the user id the token was issued for.
func ParseSetPasswordToken(secret, token string) (uint, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || c.Purpose != purposeSetPassword {
		return 0, ErrInvalidToken
	}
	var id uint
	if _, err := fmt.Sscanf(c.Subject, "%d", &id); err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
