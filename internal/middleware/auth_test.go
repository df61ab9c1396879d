package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orrery-server/internal/auth"
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

func TestJWTMiddlewareRejectsMissingCookie(t *testing.T) {
	setTestConfig(t)

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/systems", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsInvalidToken(t *testing.T) {
	setTestConfig(t)

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/systems", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "not-a-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewarePassesClaimsToHandler(t *testing.T) {
	setTestConfig(t)

	token, err := auth.GenerateJWT(42, "ada", "ada@example.com")
	require.NoError(t, err)

	var got *auth.Claims
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/systems", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, 42, got.UserID)
	assert.Equal(t, "ada", got.Username)
}
