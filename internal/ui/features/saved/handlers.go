package saved

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/export"
	"github.com/leapstack-labs/chartsmith/internal/render"
	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/features/common"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
	"github.com/leapstack-labs/chartsmith/internal/ui/resources"
)

const maxConfigBytes = 1 << 20 // 1 MiB

// Handlers provides HTTP handlers for the saved-charts feature.
type Handlers struct {
	store        store.Store
	registry     *registry.Registry
	sessionStore sessions.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st store.Store, reg *registry.Registry, sessionStore sessions.Store) *Handlers {
	return &Handlers{
		store:        st,
		registry:     reg,
		sessionStore: sessionStore,
	}
}

// SavedPage renders the saved-charts list.
func (h *Handlers) SavedPage(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListConfigs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := ListViewData{Title: "Saved charts", Nav: "saved"}
	for _, sc := range configs {
		data.Configs = append(data.Configs, configItem(sc))
	}
	if err := resources.RenderPage(w, "saved.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewPage regenerates one saved chart against the session's dataset and
// renders it.
func (h *Handlers) ViewPage(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.GetConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	fig, err := h.regenerate(sc, entry)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	payload, err := json.Marshal(fig)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := ViewData{
		Title:       sc.Config.Name,
		Nav:         "saved",
		Config:      configItem(sc),
		DatasetName: entry.Name,
		Figure:      template.JS(payload),
	}
	if err := resources.RenderPage(w, "saved_view.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Create validates the posted configuration against the active dataset and
// saves it under a fresh id.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var cfg chart.Config
	if err := json.NewDecoder(io.LimitReader(r.Body, maxConfigBytes)).Decode(&cfg); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "invalid config body: " + err.Error()})
		return
	}

	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		common.WriteJSON(w, http.StatusConflict, common.ErrorBody{Error: err.Error()})
		return
	}

	vc, err := chart.Validate(&cfg, entry.Dataset.Schema())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if _, err := vc.Regenerate(entry.Dataset); err != nil {
		common.WriteError(w, err)
		return
	}

	id, err := h.store.SaveConfig(r.Context(), &cfg)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List returns all saved configurations, newest first.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListConfigs(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if configs == nil {
		configs = []*store.SavedConfig{}
	}
	common.WriteJSON(w, http.StatusOK, configs)
}

// Get returns one saved configuration.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.GetConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sc)
}

// Delete removes a saved configuration.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteConfig(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Regenerate rebuilds a saved chart against the resolved dataset and
// returns the Plotly figure.
func (h *Handlers) Regenerate(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.GetConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		common.WriteJSON(w, http.StatusConflict, common.ErrorBody{Error: err.Error()})
		return
	}

	fig, err := h.regenerate(sc, entry)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, fig)
}

// Export serves the configuration document as JSON or YAML.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(formatParam(r, "json"))
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: err.Error()})
		return
	}
	sc, err := h.store.GetConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}

	doc, err := export.MarshalConfig(&sc.Config, format)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", safeFilename(sc.Config.Name), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if format == export.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(doc)
}

// Import reads a configuration document (JSON or YAML) and saves it.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(formatParam(r, "json"))
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: err.Error()})
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBytes))
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: err.Error()})
		return
	}

	cfg, err := export.UnmarshalConfig(body, format)
	if err != nil {
		common.WriteJSON(w, http.StatusUnprocessableEntity, common.ErrorBody{Error: err.Error()})
		return
	}

	id, err := h.store.SaveConfig(r.Context(), cfg)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Data regenerates a saved chart and downloads the materialized result as
// CSV or an Excel workbook.
func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.GetConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		common.WriteJSON(w, http.StatusConflict, common.ErrorBody{Error: err.Error()})
		return
	}

	vc, err := chart.Validate(sc.Config.CopyToDraft(), entry.Dataset.Schema())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	spec, err := vc.Regenerate(entry.Dataset)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	ds := export.Materialize(spec)

	name := safeFilename(sc.Config.Name)
	switch formatParam(r, "csv") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		if err := export.WriteCSV(w, ds); err != nil {
			common.WriteError(w, err)
		}
	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteExcel(&buf, ds); err != nil {
			common.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
		_, _ = w.Write(buf.Bytes())
	default:
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "format must be csv or xlsx"})
	}
}

// regenerate runs a saved config against a dataset and renders the figure.
func (h *Handlers) regenerate(sc *store.SavedConfig, entry *registry.Entry) (*render.Fig, error) {
	vc, err := chart.Validate(sc.Config.CopyToDraft(), entry.Dataset.Schema())
	if err != nil {
		return nil, err
	}
	spec, err := vc.Regenerate(entry.Dataset)
	if err != nil {
		return nil, err
	}
	return render.Figure(spec)
}

func configItem(sc *store.SavedConfig) ConfigItem {
	return ConfigItem{
		ID:      sc.ID,
		Name:    sc.Config.Name,
		Type:    string(sc.Config.Type),
		XAxis:   sc.Config.XAxis,
		YAxes:   strings.Join(sc.Config.YAxes, ", "),
		SavedAt: sc.SavedAt.Format("2006-01-02 15:04"),
	}
}

func formatParam(r *http.Request, fallback string) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return fallback
}

func safeFilename(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if clean == "" {
		clean = "chart"
	}
	return clean
}
