// Package builder drives the interactive chart builder: pick a chart type,
// axes, filters and an aggregation, preview live, then save.
package builder

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

// SetupRoutes registers the builder feature routes.
func SetupRoutes(
	router chi.Router,
	st store.Store,
	reg *registry.Registry,
	sessionStore sessions.Store,
) error {
	handlers := NewHandlers(st, reg, sessionStore)

	router.Get("/builder", handlers.BuilderPage)
	router.Post("/builder/preview", handlers.PreviewSSE)
	router.Post("/builder/save", handlers.SaveSSE)

	// JSON variant for non-browser clients
	router.Post("/api/preview", handlers.PreviewJSON)

	return nil
}
