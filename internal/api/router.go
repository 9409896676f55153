package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(engine *inventory.Engine, db *sql.DB, tokens *auth.Tokens) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Tokens: tokens}
	itemsHandler := &ItemsHandler{Engine: engine}
	unitsHandler := &UnitsHandler{Engine: engine}
	liftsHandler := &LiftsHandler{Engine: engine}
	reportsHandler := &ReportsHandler{Engine: engine}

	authMW := AuthMiddleware(tokens)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/low-stock", authMW(http.HandlerFunc(itemsHandler.LowStock)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/history", authMW(http.HandlerFunc(itemsHandler.GetHistory)))
	mux.Handle("PUT /api/items/{id}/threshold", authMW(requireManager(http.HandlerFunc(itemsHandler.SetThreshold))))
	mux.Handle("POST /api/items/{id}/adjust", authMW(requireManager(http.HandlerFunc(itemsHandler.Adjust))))

	// Units and lifts are scoped to the caller.
	mux.Handle("GET /api/units", authMW(http.HandlerFunc(unitsHandler.List)))
	mux.Handle("POST /api/units", authMW(http.HandlerFunc(unitsHandler.Create)))
	mux.Handle("GET /api/units/{id}/lifts", authMW(http.HandlerFunc(unitsHandler.Lifts)))
	mux.Handle("DELETE /api/units/{id}/lift", authMW(http.HandlerFunc(unitsHandler.ClearLift)))

	mux.Handle("POST /api/lifts", authMW(http.HandlerFunc(liftsHandler.Create)))
	mux.Handle("GET /api/lifts/{id}", authMW(http.HandlerFunc(liftsHandler.Get)))
	mux.Handle("POST /api/lifts/{id}/return", authMW(http.HandlerFunc(liftsHandler.Return)))

	// Reports.
	mux.Handle("GET /api/reports/low-stock", authMW(http.HandlerFunc(reportsHandler.LowStock)))
	mux.Handle("GET /api/reports/consumption", authMW(requireManager(http.HandlerFunc(reportsHandler.Consumption))))

	return mux
}
