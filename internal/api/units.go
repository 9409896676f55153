package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// UnitsHandler handles the caller's units.
type UnitsHandler struct {
	Engine *inventory.Engine
}

type createUnitRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/units.
func (h *UnitsHandler) List(w http.ResponseWriter, r *http.Request) {
	units, err := h.Engine.Units(r.Context(), actorID(r))
	if err != nil {
		engineError(w, err)
		return
	}
	if units == nil {
		units = []model.Unit{}
	}
	jsonResponse(w, http.StatusOK, units)
}

// Create handles POST /api/units.
func (h *UnitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	unit, err := h.Engine.CreateUnit(r.Context(), actorID(r), req.Name)
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("unit created", "user", GetClaims(r.Context()).Username, "unit", unit.Name)
	jsonResponse(w, http.StatusCreated, unit)
}

// Lifts handles GET /api/units/{id}/lifts.
func (h *UnitsHandler) Lifts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	lifts, err := h.Engine.UnitLifts(r.Context(), actorID(r), id)
	if err != nil {
		engineError(w, err)
		return
	}
	if lifts == nil {
		lifts = []model.Lift{}
	}
	jsonResponse(w, http.StatusOK, lifts)
}

// ClearLift handles DELETE /api/units/{id}/lift.
func (h *UnitsHandler) ClearLift(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.Engine.ClearLift(r.Context(), actorID(r), id); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("lift cleared", "user", GetClaims(r.Context()).Username, "unit_id", id)
	w.WriteHeader(http.StatusNoContent)
}
