package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService("access-secret", "refresh-secret", 15*time.Minute)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWT()

	token, err := svc.GenerateAccessToken("user@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user@example.com", claims.Subject)
	assert.Equal(t, "peerride", claims.Issuer)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWT()

	token, err := svc.GenerateRefreshToken("user@example.com", true)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
}

// Each token kind must only verify under its own secret.
func TestTokenSecretsAreIndependent(t *testing.T) {
	svc := newTestJWT()

	access, err := svc.GenerateAccessToken("user@example.com")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken("user@example.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", -time.Minute)

	token, err := svc.GenerateAccessToken("user@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestJWT()

	token, err := svc.GenerateAccessToken("user@example.com")
	require.NoError(t, err)

	other := NewJWTService("different-secret", "refresh-secret", 15*time.Minute)
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTTL(t *testing.T) {
	assert.Equal(t, 14*24*time.Hour, RefreshTTL(true))
	assert.Equal(t, 24*time.Hour, RefreshTTL(false))
}

func TestGenerateNumericOTP(t *testing.T) {
	code, err := GenerateNumericOTP(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
