package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"orrery-server/internal/middleware"
	"orrery-server/internal/planet"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
)

type PlanetHandler struct {
	service *planet.Service
}

func NewPlanetHandler(service *planet.Service) *PlanetHandler {
	return &PlanetHandler{service: service}
}

func (h *PlanetHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet")

	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PlanetHandler) GetBySystemID(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planets_by_system")

	systemID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	planets, err := h.service.GetBySystemID(r.Context(), systemID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if planets == nil {
		planets = []planet.Planet{}
	}

	response.Success(w, http.StatusOK, planets)
}

func (h *PlanetHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_planet")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	systemID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var input planet.PlanetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	input.SystemID = systemID

	created, err := h.service.Create(r.Context(), input, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, created)
}

func (h *PlanetHandler) Replace(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "replace_planet")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var input planet.PlanetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	updated, err := h.service.Replace(r.Context(), id, input, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, updated)
}

func (h *PlanetHandler) Patch(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "patch_planet")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var patch planet.PlanetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	updated, err := h.service.Patch(r.Context(), id, &patch, claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, updated)
}

func (h *PlanetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_planet")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "id")
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

func pathID(r *http.Request, name string) (int, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, errors.Validationf("%s is required", name)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid ID format", err)
	}
	return id, nil
}
