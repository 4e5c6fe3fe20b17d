package upload

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/ui/features/common"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

const maxUploadBytes = 64 << 20 // 64 MiB

// Handlers provides HTTP handlers for the upload feature.
type Handlers struct {
	registry     *registry.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *registry.Registry, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	return &Handlers{
		registry:     reg,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
	}
}

// Upload accepts a multipart CSV or Excel file, parses it into the registry
// and makes it the session's active dataset.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "missing file field"})
		return
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	var ds *dataset.Dataset
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		ds, err = dataset.FromCSV(file, name, dataset.CSVOptions{})
	case ".xlsx", ".xlsm":
		ds, err = dataset.FromExcel(file, name)
	default:
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{
			Error: fmt.Sprintf("unsupported file type %q", filepath.Ext(name)),
		})
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}

	entry := h.registry.Put(name, ds)
	common.SetActiveDataset(h.sessionStore, w, r, entry.ID)
	h.notifier.Broadcast()

	h.logger.Info("dataset uploaded", "name", name, "rows", ds.RowCount(), "id", entry.ID)

	// Browser form posts get sent to the builder; API clients get JSON.
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/builder?dataset="+entry.ID, http.StatusSeeOther)
		return
	}
	common.WriteJSON(w, http.StatusCreated, datasetItem(entry))
}

// ListDatasets returns all loaded datasets, newest first.
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	items := make([]DatasetItem, 0)
	for _, e := range h.registry.List() {
		items = append(items, datasetItem(e))
	}
	common.WriteJSON(w, http.StatusOK, items)
}

// DatasetDetail returns one dataset's schema and a preview of its rows.
func (h *Handlers) DatasetDetail(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		common.WriteJSON(w, http.StatusNotFound, common.ErrorBody{Error: "dataset not found"})
		return
	}

	detail := DatasetDetailView{DatasetItem: datasetItem(entry)}
	for _, col := range entry.Dataset.Schema() {
		detail.Schema = append(detail.Schema, ColumnView{Name: col.Name, Type: string(col.Type)})
	}
	for _, row := range entry.Dataset.Head(previewRows) {
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = v.Render()
		}
		detail.Preview = append(detail.Preview, rendered)
	}
	common.WriteJSON(w, http.StatusOK, detail)
}

// Activate makes a dataset the session's active one.
func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.registry.Get(id); !ok {
		common.WriteJSON(w, http.StatusNotFound, common.ErrorBody{Error: "dataset not found"})
		return
	}
	common.SetActiveDataset(h.sessionStore, w, r, id)
	w.WriteHeader(http.StatusNoContent)
}

// Remove unloads a dataset from the registry.
func (h *Handlers) Remove(w http.ResponseWriter, r *http.Request) {
	h.registry.Remove(chi.URLParam(r, "id"))
	h.notifier.Broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func datasetItem(e *registry.Entry) DatasetItem {
	return DatasetItem{
		ID:       e.ID,
		Name:     e.Name,
		Rows:     e.Dataset.RowCount(),
		Columns:  len(e.Dataset.Columns),
		LoadedAt: e.LoadedAt,
	}
}
