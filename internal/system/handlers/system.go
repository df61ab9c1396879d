package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"orrery-server/internal/middleware"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
	"orrery-server/internal/system"
)

type SystemHandler struct {
	service *system.Service
}

func NewSystemHandler(service *system.Service) *SystemHandler {
	return &SystemHandler{service: service}
}

func (h *SystemHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_systems")

	systems, err := h.service.List(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if systems == nil {
		systems = []system.System{}
	}

	response.Success(w, http.StatusOK, systems)
}

func (h *SystemHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_system")

	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sys, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, sys)
}

func (h *SystemHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_system")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var input system.SystemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	created, err := h.service.Create(r.Context(), input, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, created)
}

func (h *SystemHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "update_system")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var patch system.SystemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, updated)
}

func (h *SystemHandler) UpdateStar(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "update_star")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var patch system.StarPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	updated, err := h.service.UpdateStar(r.Context(), id, patch, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, updated)
}

func (h *SystemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_system")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, claims.UserID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validation("system ID is required")
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid system ID format", err)
	}
	return id, nil
}
