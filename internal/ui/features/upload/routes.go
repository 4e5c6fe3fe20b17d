// Package upload ingests CSV and Excel files into the dataset registry.
package upload

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

// SetupRoutes registers the upload feature routes.
func SetupRoutes(
	router chi.Router,
	reg *registry.Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(reg, sessionStore, notify, logger)

	router.Post("/upload", handlers.Upload)

	router.Route("/api/datasets", func(r chi.Router) {
		r.Get("/", handlers.ListDatasets)
		r.Get("/{id}", handlers.DatasetDetail)
		r.Post("/{id}/activate", handlers.Activate)
		r.Delete("/{id}", handlers.Remove)
	})

	return nil
}
