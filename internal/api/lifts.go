package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/inventory"
)

// LiftsHandler handles lift endpoints.
type LiftsHandler struct {
	Engine *inventory.Engine
}

type createLiftRequest struct {
	UnitID int64                `json:"unit_id"`
	Items  []inventory.LiftLine `json:"items"`
}

type returnLiftRequest struct {
	Damaged []inventory.LiftLine `json:"damaged"`
}

// Create handles POST /api/lifts.
func (h *LiftsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLiftRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lift, err := h.Engine.CreateLift(r.Context(), actorID(r), req.UnitID, req.Items)
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("lift created", "user", GetClaims(r.Context()).Username,
		"lift_id", lift.ID, "unit", lift.UnitName, "quantity", lift.TotalQuantity())
	jsonResponse(w, http.StatusCreated, lift)
}

// Get handles GET /api/lifts/{id}.
func (h *LiftsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	lift, err := h.Engine.GetLift(r.Context(), actorID(r), id)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, lift)
}

// Return handles POST /api/lifts/{id}/return. An empty body returns
// everything undamaged.
func (h *LiftsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req returnLiftRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Engine.ReturnLift(r.Context(), actorID(r), id, req.Damaged)
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("lift returned", "user", GetClaims(r.Context()).Username,
		"lift_id", id, "restored", res.Restored, "damaged", res.Damaged)
	jsonResponse(w, http.StatusOK, res)
}
