package home

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
	"github.com/leapstack-labs/chartsmith/internal/ui/resources"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	store        store.Store
	registry     *registry.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st store.Store, reg *registry.Registry, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{
		store:        st,
		registry:     reg,
		sessionStore: sessionStore,
		notifier:     notify,
	}
}

// HomePage renders the landing page.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	data, err := h.buildViewData(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := resources.RenderPage(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomeSSE keeps the dataset list current: it patches the list once on
// connect and again whenever a dataset reload is broadcast.
func (h *Handlers) HomeSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	send := func() {
		data, err := h.buildViewData(r.Context())
		if err != nil {
			_ = sse.ConsoleError(err)
			return
		}
		var buf strings.Builder
		if err := resources.RenderFragment(&buf, "dataset_list.html", data); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
		if err := sse.PatchElements(buf.String()); err != nil {
			_ = sse.ConsoleError(err)
		}
	}

	send()

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			send()
		}
	}
}

// buildViewData assembles the landing page data.
func (h *Handlers) buildViewData(ctx context.Context) (ViewData, error) {
	data := ViewData{
		Title: "Datasets",
		Nav:   "home",
	}

	for _, e := range h.registry.List() {
		data.Datasets = append(data.Datasets, DatasetItem{
			ID:       e.ID,
			Name:     e.Name,
			Rows:     e.Dataset.RowCount(),
			Columns:  len(e.Dataset.Columns),
			LoadedAt: e.LoadedAt.Format("2006-01-02 15:04"),
		})
	}
	data.DatasetCount = len(data.Datasets)

	saved, err := h.store.ListConfigs(ctx)
	if err != nil {
		return data, err
	}
	data.SavedCount = len(saved)

	return data, nil
}
