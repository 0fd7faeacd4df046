package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestManager()

	tok, err := m.GenerateAccessToken("user-123")
	require.NoError(t, err)

	userID, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()
	m := newTestManager()

	access, err := m.GenerateAccessToken("u1")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()
	m := newTestManager()
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	tok, err := m.GenerateAccessToken("u1")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokensMintedTogetherDiffer(t *testing.T) {
	t.Parallel()
	m := newTestManager()
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	first, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)
	second, err := m.GenerateRefreshToken("u1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	m := newTestManager()

	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGarbageToken(t *testing.T) {
	t.Parallel()
	_, err := newTestManager().ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
