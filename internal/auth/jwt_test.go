package auth

import (
	"testing"
	"time"

	"orrery-server/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig(t *testing.T) {
	t.Helper()

	previous := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-test-secret-test-secret!",
			TokenExpiration: time.Hour,
		},
	}
	t.Cleanup(func() { config.GlobalConfig = previous })
}

func TestGenerateAndValidateJWT(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateJWT(42, "ada", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateJWTRejectsTamperedToken(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateJWT(42, "ada", "ada@example.com")
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	require.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateJWT(42, "ada", "ada@example.com")
	require.NoError(t, err)

	config.GlobalConfig.Auth.JWTSecret = "another-secret-another-secret-another"

	_, err = ValidateJWT(token)
	require.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	_, err := HashPassword("short")
	require.Error(t, err)
}
