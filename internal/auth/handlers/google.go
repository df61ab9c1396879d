package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"orrery-server/internal/auth"
	"orrery-server/internal/auth/providers"
	"orrery-server/internal/shared/config"
	"orrery-server/internal/shared/cookies"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
)

type GoogleAuthHandler struct {
	provider     *providers.GoogleProvider
	authService  *auth.Service
	isConfigured bool
}

func NewGoogleAuthHandler(provider *providers.GoogleProvider, authService *auth.Service, isConfigured bool) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		provider:     provider,
		authService:  authService,
		isConfigured: isConfigured,
	}
}

// HandleAuth initiates the Google OAuth flow
func (h *GoogleAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "google_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External("Google OAuth is not properly configured"))
		return
	}

	state, err := auth.GenerateOAuthState("google", r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	url := h.provider.GetAuthURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback processes the Google OAuth callback
func (h *GoogleAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", "google_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("Google OAuth authorization denied",
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied", "Authorization was denied")
		return
	}

	if code == "" {
		logger.Error("Google OAuth callback missing authorization code")
		redirectWithError(w, r, "oauth_error", "Missing authorization code")
		return
	}

	if err := auth.ValidateOAuthState(state, "google", r.UserAgent()); err != nil {
		logger.Error("OAuth state validation failed", "error", err)
		redirectWithError(w, r, "oauth_error", "Invalid request state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange Google authorization code", "error", err)
		redirectWithError(w, r, "oauth_error", "Failed to exchange authorization code")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info from Google", "error", err)
		redirectWithError(w, r, "oauth_error", "Failed to retrieve user information")
		return
	}

	userLogger := logger.With(
		"user_email", userInfo.Email,
		"google_user_id", userInfo.ID,
	)

	var avatarURL *string
	if userInfo.Picture != "" {
		avatarURL = &userInfo.Picture
	}

	signedIn, jwtToken, err := h.authService.FindOrCreateByOAuth(ctx, userInfo.Email, userInfo.Name, avatarURL)
	if err != nil {
		userLogger.Error("Failed to sign in Google user", "error", err)
		redirectWithError(w, r, "database_error", "Failed to authenticate user")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("Google OAuth authentication successful",
		"user_id", signedIn.ID,
		"username", signedIn.Username)

	cfg := config.GlobalConfig
	successURL := fmt.Sprintf("%s/auth/callback?success=true", cfg.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}
