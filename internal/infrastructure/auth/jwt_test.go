package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32ch",
		RefreshSecret:          "test-refresh-secret-at-least-32c",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 168 * time.Hour,
		Issuer:                 "rentfolio-test",
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Email:  "owner@example.com",
		Role:   "OWNER",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "OWNER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestValidateTokenTypeMismatch(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: userID, Email: "a@b.com", Role: "TENANT"})
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	// refresh tokens do not carry the role
	assert.Empty(t, claims.Role)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32ch",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "rentfolio-test",
	})

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewJWTService(config.JWTConfig{
		Secret:                 "another-secret-entirely-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "rentfolio-test",
	})

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshSecretFallsBackToAccessSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "only-one-secret-configured-32chr",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "rentfolio-test",
	})

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}
