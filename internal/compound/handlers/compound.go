package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"orrery-server/internal/compound"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/shared/response"
)

type CompoundHandler struct {
	repo *compound.Repository
}

func NewCompoundHandler(repo *compound.Repository) *CompoundHandler {
	return &CompoundHandler{repo: repo}
}

// List returns locally resolved compound records for a comma-separated
// cids query parameter. Only CIDs already referenced by some planet have
// local records; unknown CIDs are simply absent from the result.
func (h *CompoundHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_compounds")

	cidsParam := r.URL.Query().Get("cids")
	if cidsParam == "" {
		response.Error(w, r, logger, errors.Validation("cids query parameter is required"))
		return
	}

	parts := strings.Split(cidsParam, ",")
	cids := make([]int, 0, len(parts))
	for _, part := range parts {
		cid, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid cid in cids parameter", err))
			return
		}
		cids = append(cids, cid)
	}

	compounds, err := h.repo.GetCompoundsByCIDs(r.Context(), cids)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to load compounds", err))
		return
	}

	response.Success(w, http.StatusOK, compounds)
}
