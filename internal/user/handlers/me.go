package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"orrery-server/internal/middleware"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
	"orrery-server/internal/user"
)

type MeHandler struct {
	service *user.Service
}

func NewMeHandler(service *user.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	current, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, current)
}

type avatarRequest struct {
	AvatarURL *string `json:"avatar_url"`
}

// UpdateAvatar sets or clears the authenticated user's avatar.
func (h *MeHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "update_avatar")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req avatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	updated, err := h.service.UpdateAvatar(r.Context(), claims.UserID, req.AvatarURL)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, updated)
}
