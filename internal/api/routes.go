package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orbitview/spacedata-server/internal/analytics"
	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
	"github.com/orbitview/spacedata-server/internal/sync"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataTypeInfo describes one dataset kind for discovery by clients.
type DataTypeInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HasDate bool   `json:"hasDate"`
}

// Routes defines the routes for the API with dependency injection
type Routes struct {
	store       store.Store
	coordinator *sync.Coordinator
	engine      *analytics.Engine
}

// NewRoutes creates a new Routes instance with the provided dependencies
func NewRoutes(st store.Store, coordinator *sync.Coordinator, engine *analytics.Engine) *Routes {
	return &Routes{
		store:       st,
		coordinator: coordinator,
		engine:      engine,
	}
}

// health handles GET /health
func (*Routes) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// dataTypes handles GET /api/data/types
func (rr *Routes) dataTypes(w http.ResponseWriter, _ *http.Request) {
	configs := dataset.All()
	info := make([]DataTypeInfo, 0, len(configs))
	for _, cfg := range configs {
		name := string(cfg.Kind)
		info = append(info, DataTypeInfo{
			ID:      name,
			Name:    strings.ToUpper(name[:1]) + name[1:],
			HasDate: cfg.HasDate,
		})
	}
	rr.writeJSONResponse(w, http.StatusOK, info)
}

// syncStatus handles GET /api/sync/status
func (rr *Routes) syncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := rr.coordinator.SyncStatus(r.Context())
	if err != nil {
		slog.Error("failed to read sync status", "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	rr.writeJSONResponse(w, http.StatusOK, status)
}

// triggerSync handles POST /api/sync/{kind}
func (rr *Routes) triggerSync(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	result, err := rr.coordinator.Sync(r.Context(), kind)
	if err != nil {
		var upstreamErr *sync.UpstreamError
		switch {
		case errors.Is(err, dataset.ErrInvalidKind):
			rr.writeErrorResponse(w, "Invalid data type", http.StatusBadRequest)
		case errors.Is(err, sync.ErrSyncInProgress):
			rr.writeErrorResponse(w, "Sync already in progress", http.StatusConflict)
		case errors.As(err, &upstreamErr):
			slog.Error("sync failed against upstream", "kind", kind, "error", err)
			rr.writeErrorResponse(w, "Upstream unavailable", http.StatusBadGateway)
		default:
			slog.Error("sync failed", "kind", kind, "error", err)
			rr.writeErrorResponse(w, "Sync failed", http.StatusInternalServerError)
		}
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, result)
}

// analyze handles GET /api/analytics/{kind}
func (rr *Routes) analyze(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	report, err := rr.engine.Analyze(r.Context(), kind, start, end)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalidKind) {
			rr.writeErrorResponse(w, "Invalid data type", http.StatusBadRequest)
			return
		}
		slog.Error("analytics query failed", "kind", kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, report)
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	errorResp := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
