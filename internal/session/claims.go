package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the displayable part of a JWT credential.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the credential has an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ErrNoCredential is returned by Claims when logged out.
var ErrNoCredential = errors.New("no credential")

// Claims decodes the current credential without verifying its signature.
// The server is the only party that can verify it; this is for display.
func (h *Holder) Claims() (Claims, error) {
	token := h.Token()
	if token == "" {
		return Claims{}, ErrNoCredential
	}
	return ParseClaims(token)
}

// ParseClaims decodes an unverified JWT. Subjects may be strings or numbers.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse credential: %w", err)
	}

	var c Claims
	switch sub := mc["sub"].(type) {
	case string:
		c.Subject = sub
	case float64:
		c.Subject = fmt.Sprintf("%.0f", sub)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}
