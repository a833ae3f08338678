package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshloaf/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "test"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 2 * time.Hour
	cfg.Security.BcryptCost = 4
	return cfg
}

func testPrincipal() Principal {
	return Principal{
		UserID:        7,
		Email:         "jamie@example.com",
		DisplayName:   "Jamie Cruz",
		EmailVerified: true,
		IsAdmin:       true,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())

	token, err := m.GenerateAccessToken(testPrincipal())
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "jamie@example.com", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenCarriesNoAdminClaim(t *testing.T) {
	m := NewJWTManager(testConfig())

	token, err := m.GenerateRefreshToken(7, "jamie@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := NewJWTManager(testConfig())

	access, err := m.GenerateAccessToken(testPrincipal())
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(7, "jamie@example.com")
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	m := NewJWTManager(testConfig())

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	foreign := NewJWTManager(other)

	token, err := foreign.GenerateAccessToken(testPrincipal())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Empty(t, ExtractTokenFromHeader("abc123"))
	assert.Empty(t, ExtractTokenFromHeader(""))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc123"))
}

func TestPasswordHashAndVerify(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("sourdough123")
	require.NoError(t, err)
	assert.NotEqual(t, "sourdough123", hash)

	assert.NoError(t, p.VerifyPassword("sourdough123", hash))
	assert.Error(t, p.VerifyPassword("wrong12345", hash))
}

func TestPasswordValidation(t *testing.T) {
	p := NewPasswordManager(testConfig())

	assert.Error(t, p.ValidatePassword("short1"), "too short")
	assert.Error(t, p.ValidatePassword("allletters"), "needs a number")
	assert.Error(t, p.ValidatePassword("12345678"), "needs a letter")
	assert.NoError(t, p.ValidatePassword("sourdough123"))
}
