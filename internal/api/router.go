package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/mediagrab/internal/api/handler"
	mw "github.com/iconidentify/mediagrab/internal/api/middleware"
)

// NewRouter creates the admin HTTP router. The /api/v1 routes are only
// mounted when apiKey is set.
func NewRouter(
	healthHandler *handler.HealthHandler,
	deliveryHandler *handler.DeliveryHandler,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	if apiKey == "" {
		logger.Info("API_KEY not set, admin API disabled")
		return r
	}

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)
		r.Get("/deliveries", deliveryHandler.List)
	})

	return r
}
