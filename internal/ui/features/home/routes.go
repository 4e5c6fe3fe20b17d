// Package home renders the landing page: dataset summary cards and the
// dataset list, refreshed over SSE when files reload.
package home

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

// SetupRoutes registers the home feature routes.
func SetupRoutes(
	router chi.Router,
	st store.Store,
	reg *registry.Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
) error {
	handlers := NewHandlers(st, reg, sessionStore, notify)

	router.Get("/", handlers.HomePage)
	router.Get("/home/sse", handlers.HomeSSE)

	return nil
}
