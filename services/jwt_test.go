package services

import (
	"biometric_auth_ms/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "test-issuer", time.Hour, 24*time.Hour)

	tokens, err := svc.GenerateTokens(&domain.User{Id: 7})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	token, err := svc.ParseJWT(tokens.AccessToken)
	require.NoError(t, err)

	claims, err := svc.GetClaims(token)
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "test-issuer", claims["iss"])
}

func TestParseJWT_WrongSecret(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "test-issuer", time.Hour, 24*time.Hour)
	other := NewJWTService([]byte("other-secret"), "test-issuer", time.Hour, 24*time.Hour)

	signed, err := svc.GenerateToken(7, time.Hour)
	require.NoError(t, err)

	_, err = other.ParseJWT(signed)
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "test-issuer", time.Hour, 24*time.Hour)

	signed, err := svc.GenerateToken(7, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseJWT(signed)
	assert.Error(t, err)
}
