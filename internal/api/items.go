package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Engine *inventory.Engine
}

type thresholdRequest struct {
	Threshold *int `json:"threshold"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.ListItems(r.Context())
	if err != nil {
		engineError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// LowStock handles GET /api/items/low-stock.
func (h *ItemsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.LowStockItems(r.Context())
	if err != nil {
		engineError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.CreateItem(r.Context(), actorID(r), req)
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("item created", "user", GetClaims(r.Context()).Username,
		"item", item.Name, "quantity", item.Quantity)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	detail, err := h.Engine.ItemDetail(r.Context(), id)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	entries, err := h.Engine.ItemHistory(r.Context(), id)
	if err != nil {
		engineError(w, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// SetThreshold handles PUT /api/items/{id}/threshold.
func (h *ItemsHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req thresholdRequest
	if err := decodeJSON(r, &req); err != nil || req.Threshold == nil {
		jsonError(w, http.StatusBadRequest, "threshold required")
		return
	}

	item, err := h.Engine.SetLowStockThreshold(r.Context(), actorID(r), id, *req.Threshold)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Adjust handles POST /api/items/{id}/adjust.
func (h *ItemsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Engine.Adjust(r.Context(), id, req.Delta, actorID(r))
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("item adjusted", "user", GetClaims(r.Context()).Username,
		"item", res.Item.Name, "delta", req.Delta, "quantity", res.Item.Quantity)
	jsonResponse(w, http.StatusOK, res)
}
