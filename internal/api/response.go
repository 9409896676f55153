package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zaloga/internal/inventory"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// engineError writes the response for an error returned by the engine.
func engineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch inventory.Kind(err) {
	case inventory.ErrNotFound:
		status = http.StatusNotFound
	case inventory.ErrInvalidInput:
		status = http.StatusBadRequest
	case inventory.ErrInsufficientStock, inventory.ErrConflict:
		status = http.StatusConflict
	case inventory.ErrUnauthorized:
		status = http.StatusUnauthorized
	case inventory.ErrStoreUnavailable:
		jsonError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	var e *inventory.Error
	if errors.As(err, &e) && e.Kind == inventory.ErrInsufficientStock {
		jsonResponse(w, status, map[string]any{
			"error":     err.Error(),
			"item_id":   e.ItemID,
			"available": e.Available,
			"requested": e.Requested,
		})
		return
	}
	jsonError(w, status, err.Error())
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
