// Package router sets up HTTP routes for the UI server.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/store"
	builderFeature "github.com/leapstack-labs/chartsmith/internal/ui/features/builder"
	homeFeature "github.com/leapstack-labs/chartsmith/internal/ui/features/home"
	savedFeature "github.com/leapstack-labs/chartsmith/internal/ui/features/saved"
	uploadFeature "github.com/leapstack-labs/chartsmith/internal/ui/features/upload"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
	"github.com/leapstack-labs/chartsmith/internal/ui/resources"
)

// LoadFunc turns a file on disk into a Dataset.
type LoadFunc func(ctx context.Context, path string) (*dataset.Dataset, error)

// Deps carries the shared dependencies every feature receives.
type Deps struct {
	Store        store.Store
	Registry     *registry.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Load         LoadFunc
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	setupReload(router)

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := homeFeature.SetupRoutes(router, deps.Store, deps.Registry, deps.SessionStore, deps.Notifier); err != nil {
		return err
	}

	if err := uploadFeature.SetupRoutes(router, deps.Registry, deps.SessionStore, deps.Notifier, deps.Logger); err != nil {
		return err
	}

	if err := builderFeature.SetupRoutes(router, deps.Store, deps.Registry, deps.SessionStore); err != nil {
		return err
	}

	if err := savedFeature.SetupRoutes(router, deps.Store, deps.Registry, deps.SessionStore); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
