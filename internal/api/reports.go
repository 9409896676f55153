package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/zaloga/internal/inventory"
)

// ReportsHandler serves ranked item reports.
type ReportsHandler struct {
	Engine *inventory.Engine
}

func limitParam(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// LowStock handles GET /api/reports/low-stock.
func (h *ReportsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	rows, err := h.Engine.TopLowStock(r.Context(), limit)
	if err != nil {
		engineError(w, err)
		return
	}
	if rows == nil {
		rows = []inventory.ItemCount{}
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Consumption handles GET /api/reports/consumption.
func (h *ReportsHandler) Consumption(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	rows, err := h.Engine.TopConsumed(r.Context(), limit)
	if err != nil {
		engineError(w, err)
		return
	}
	if rows == nil {
		rows = []inventory.ItemCount{}
	}
	jsonResponse(w, http.StatusOK, rows)
}
