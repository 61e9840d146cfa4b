package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	iat := time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantSub string
	}{
		{
			name:    "string subject",
			claims:  jwt.MapClaims{"sub": "wanjiru", "exp": exp.Unix(), "iat": iat.Unix()},
			wantSub: "wanjiru",
		},
		{
			name:    "numeric subject",
			claims:  jwt.MapClaims{"sub": 42, "exp": exp.Unix(), "iat": iat.Unix()},
			wantSub: "42",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseClaims(signToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, c.Subject)
			assert.True(t, exp.Equal(c.ExpiresAt))
			assert.True(t, iat.Equal(c.IssuedAt))
		})
	}
}

func TestParseClaims_Garbage(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestClaimsExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, Claims{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
	assert.False(t, Claims{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.False(t, Claims{}.Expired(now), "no expiry never expires")
}

func TestHolderClaims(t *testing.T) {
	h, err := Open(context.Background(), &memStore{})
	require.NoError(t, err)

	_, err = h.Claims()
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, h.Set(context.Background(), signToken(t, jwt.MapClaims{"sub": "otieno"})))
	c, err := h.Claims()
	require.NoError(t, err)
	assert.Equal(t, "otieno", c.Subject)
	assert.True(t, c.ExpiresAt.IsZero())
}
