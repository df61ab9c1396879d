package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"orrery-server/internal/planettype"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
)

type PlanetTypeHandler struct {
	repo *planettype.Repository
}

func NewPlanetTypeHandler(repo *planettype.Repository) *PlanetTypeHandler {
	return &PlanetTypeHandler{repo: repo}
}

func (h *PlanetTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_planet_types")

	types, err := h.repo.GetAllPlanetTypes(r.Context())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to load planet types", err))
		return
	}

	if types == nil {
		types = []planettype.PlanetType{}
	}

	response.Success(w, http.StatusOK, types)
}

func (h *PlanetTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet_type")

	idStr := r.PathValue("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid planet type ID format", err))
		return
	}

	planetType, err := h.repo.GetPlanetTypeByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to load planet type", err))
		return
	}
	if planetType == nil {
		response.Error(w, r, logger, errors.NotFoundf("planet type %d not found", id))
		return
	}

	response.Success(w, http.StatusOK, planetType)
}
