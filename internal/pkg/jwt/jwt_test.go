package jwt

import (
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticID string

func (s staticID) Generate() string { return string(s) }

func newSigner(t *testing.T, c *clock.Manual) *Signer {
	t.Helper()

	s, err := NewHS256(Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:    "https://sandbox.local/",
		Audiences: []string{"mfarelay"},
		TTL:       time.Hour,
		Clock:     c,
		UUID:      staticID("jti-1"),
	})
	require.NoError(t, err)
	return s
}

func TestNewHS256_ShortKey(t *testing.T) {
	_, err := NewHS256(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSigner_SignVerify(t *testing.T) {
	c := clock.NewManual(time.Now())
	s := newSigner(t, c)
	assert.Equal(t, time.Hour, s.TTL())

	token, err := s.Sign("user-1", map[string]any{"scope": "openid", "sub": "ignored"})
	require.NoError(t, err)

	sub, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	var claims libJWT.MapClaims
	_, _, err = libJWT.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "openid", claims["scope"])
	assert.Equal(t, "jti-1", claims["jti"])

	c.Advance(2 * time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, libJWT.ErrTokenExpired)
}

func TestSubject(t *testing.T) {
	s := newSigner(t, clock.NewManual(time.Now()))
	token, err := s.Sign("auth0|42", nil)
	require.NoError(t, err)

	assert.Equal(t, "auth0|42", Subject(token))
	assert.Equal(t, "auth0|42", Subject("Bearer "+token))
	assert.Equal(t, "auth0|42", Subject("bearer   "+token))
	assert.Empty(t, Subject("Bearer opaque-token"))
	assert.Empty(t, Subject(""))
}
