// Package api provides the REST API server for dataset access, sync
// control and analytics.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orbitview/spacedata-server/internal/analytics"
	"github.com/orbitview/spacedata-server/internal/store"
	"github.com/orbitview/spacedata-server/internal/sync"
)

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// NewServer creates and configures the HTTP router with the given
// dependencies and options
func NewServer(st store.Store, coordinator *sync.Coordinator, engine *analytics.Engine, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	routes := NewRoutes(st, coordinator, engine)

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Get("/health", routes.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data/types", routes.dataTypes)

		r.Route("/data/{kind}", func(r chi.Router) {
			r.Get("/", routes.listRecords)
			r.Post("/", routes.createRecord)
			r.Get("/{id}", routes.getRecord)
			r.Put("/{id}", routes.updateRecord)
			r.Delete("/{id}", routes.deleteRecord)
		})

		r.Get("/sync/status", routes.syncStatus)
		r.Post("/sync/{kind}", routes.triggerSync)

		r.Get("/analytics/{kind}", routes.analyze)
	})

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
