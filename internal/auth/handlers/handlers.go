package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"orrery-server/internal/auth"
	"orrery-server/internal/shared/cookies"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
	"orrery-server/internal/user"
)

type AuthHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User *user.User `json:"user"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "register")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	created, token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cookies.SetAuthCookie(w, token)
	response.Success(w, http.StatusCreated, authResponse{User: created})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "login")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	found, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cookies.SetAuthCookie(w, token)
	response.Success(w, http.StatusOK, authResponse{User: found})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"status": "logged out"})
}
