// Package saved lists persisted chart configurations and serves the JSON
// API for saving, regenerating, exporting and deleting them.
package saved

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

// SetupRoutes registers the saved-charts feature routes.
func SetupRoutes(
	router chi.Router,
	st store.Store,
	reg *registry.Registry,
	sessionStore sessions.Store,
) error {
	handlers := NewHandlers(st, reg, sessionStore)

	// Page routes
	router.Get("/saved", handlers.SavedPage)
	router.Get("/saved/{id}", handlers.ViewPage)

	// JSON API
	router.Route("/api/configs", func(r chi.Router) {
		r.Post("/", handlers.Create)
		r.Get("/", handlers.List)
		r.Post("/import", handlers.Import)
		r.Get("/{id}", handlers.Get)
		r.Delete("/{id}", handlers.Delete)
		r.Post("/{id}/regenerate", handlers.Regenerate)
		r.Get("/{id}/export", handlers.Export)
		r.Get("/{id}/data", handlers.Data)
	})

	return nil
}
