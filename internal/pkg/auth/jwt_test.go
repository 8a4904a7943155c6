package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testJWTManager() *JWTManager {
	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	jm := testJWTManager()

	token, err := jm.GenerateAccessToken(42, "user@example.com", true)
	require.NoError(t, err)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenNeverCarriesAdminFlag(t *testing.T) {
	jm := testJWTManager()

	token, err := jm.GenerateRefreshToken(42, "admin@example.com")
	require.NoError(t, err)

	claims, err := jm.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	jm := testJWTManager()

	access, err := jm.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)
	refresh, err := jm.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = jm.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = jm.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	jm := testJWTManager()
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:            "a-different-secret",
			AccessTokenExpiry: 15 * time.Minute,
		},
	})

	token, err := other.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = jm.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
