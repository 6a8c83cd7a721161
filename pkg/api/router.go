// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/engramhq/engram/config"
	"github.com/engramhq/engram/pkg/api/handlers"
	"github.com/engramhq/engram/pkg/api/middleware"
	"github.com/engramhq/engram/pkg/logger"

	_ "github.com/engramhq/engram/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Working handles working memory buffer endpoints
	Working *handlers.WorkingHandler

	// Memory handles long-term memory endpoints
	Memory *handlers.MemoryHandler

	// Search handles recall and search endpoints
	Search *handlers.SearchHandler

	// Stats handles aggregate views and the manual sweep
	Stats *handlers.StatsHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// WebSocket streams lifecycle events
	WebSocket *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder

	// TracingEnabled wires the HTTP tracing middleware
	TracingEnabled bool
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	// Register global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	// Tracing wraps metrics so recorded samples carry the span context
	if handlers.TracingEnabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}

	// Add metrics middleware if provided
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))

	// The request timeout would sever long-lived event streams, so the
	// websocket route is registered outside the timeout group.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))
		RegisterRoutes(r, handlers)
	})

	if handlers.WebSocket != nil {
		r.Handle("/ws/events", handlers.WebSocket)
	}

	// Dashboard at the root. Paths without a more specific route fall
	// through to the SPA entry point.
	r.Handle("/*", newDashboardHandler(log))

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Working memory buffer routes
		if handlers.Working != nil {
			r.Route("/working", func(r chi.Router) {
				r.Post("/", handlers.Working.Ingest)
				r.Get("/", handlers.Working.List)
				r.Get("/{id}", handlers.Working.Get)
				r.Delete("/{id}", handlers.Working.Discard)
				r.Post("/{id}/consolidate", handlers.Working.Consolidate)
			})
		}

		// Long-term memory routes
		if handlers.Memory != nil {
			r.Route("/memories", func(r chi.Router) {
				r.Get("/", handlers.Memory.List)
				r.Get("/{id}", handlers.Memory.Get)
				r.Post("/{id}/reinforce", handlers.Memory.Reinforce)
				r.Post("/{id}/attempts", handlers.Memory.RecordAttempt)
				r.Post("/{id}/validate", handlers.Memory.Validate)
				r.Post("/{id}/links", handlers.Memory.Link)
				r.Get("/{id}/links", handlers.Memory.Links)
				r.Get("/{id}/history", handlers.Memory.History)
			})
		}

		// Search routes
		if handlers.Search != nil {
			r.Post("/recall", handlers.Search.Recall)
			r.Post("/search", handlers.Search.Search)
			r.Get("/search/text", handlers.Search.SearchText)
		}

		// Aggregate views and maintenance
		if handlers.Stats != nil {
			r.Route("/stats", func(r chi.Router) {
				r.Get("/types", handlers.Stats.TypeHealth)
				r.Get("/procedures", handlers.Stats.Procedures)
			})
			r.Post("/sweep", handlers.Stats.Sweep)
		}
	})

	// Health check routes (not versioned)
	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
