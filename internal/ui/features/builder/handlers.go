package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/render"
	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/features/common"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
	"github.com/leapstack-labs/chartsmith/internal/ui/resources"
)

// Handlers provides HTTP handlers for the builder feature.
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

// BuilderPage renders the builder shell for the resolved dataset.
func (h *Handlers) BuilderPage(w http.ResponseWriter, r *http.Request) {
	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	common.SetActiveDataset(h.sessionStore, w, r, entry.ID)

	data := ViewData{
		Title:       "Builder",
		Nav:         "builder",
		DatasetName: entry.Name,
		RowCount:    entry.Dataset.RowCount(),
		Signals:     defaultSignals(entry),
	}
	for _, col := range entry.Dataset.Schema() {
		data.Columns = append(data.Columns, ColumnView{Name: col.Name, Type: string(col.Type)})
	}
	for _, t := range chart.Types() {
		data.ChartTypes = append(data.ChartTypes, string(t))
	}
	for _, op := range chart.Ops() {
		data.Operators = append(data.Operators, string(op))
	}
	for _, agg := range chart.Aggregations() {
		data.Aggregations = append(data.Aggregations, string(agg))
	}

	if err := resources.RenderPage(w, "builder.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// PreviewSSE regenerates the draft against the active dataset and pushes
// the Plotly figure to the page.
func (h *Handlers) PreviewSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals before creating the SSE stream (it consumes the body).
	var signals Signals
	readErr := datastar.ReadSignals(r, &signals)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		h.patchStatus(sse, StatusData{Error: "failed to read builder state: " + readErr.Error()})
		return
	}

	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		h.patchStatus(sse, StatusData{Error: err.Error()})
		return
	}

	fig, spec, err := h.preview(signals, entry)
	if err != nil {
		h.patchStatus(sse, statusFromError(err))
		return
	}

	payload, err := json.Marshal(fig)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.ExecuteScript(fmt.Sprintf("window.renderChart(%s)", payload)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	h.patchStatus(sse, StatusData{
		Message: fmt.Sprintf("%d rows after filters", spec.RowCount),
	})
}

// SaveSSE validates the draft and persists it under a fresh id.
func (h *Handlers) SaveSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	readErr := datastar.ReadSignals(r, &signals)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		h.patchStatus(sse, StatusData{Error: "failed to read builder state: " + readErr.Error()})
		return
	}

	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		h.patchStatus(sse, StatusData{Error: err.Error()})
		return
	}

	cfg := signals.Config(entry.Dataset)
	vc, err := chart.Validate(cfg, entry.Dataset.Schema())
	if err != nil {
		h.patchStatus(sse, statusFromError(err))
		return
	}
	// A draft that regenerates to nothing is refused, same as the API.
	if _, err := vc.Regenerate(entry.Dataset); err != nil {
		h.patchStatus(sse, statusFromError(err))
		return
	}

	id, err := h.store.SaveConfig(r.Context(), cfg)
	if err != nil {
		h.patchStatus(sse, StatusData{Error: err.Error()})
		return
	}
	h.patchStatus(sse, StatusData{Message: "saved as " + id})
}

// PreviewJSON is the non-SSE variant: a chart config in the body, the
// figure JSON in the response.
func (h *Handlers) PreviewJSON(w http.ResponseWriter, r *http.Request) {
	entry, err := common.ResolveDataset(h.registry, h.sessionStore, r)
	if err != nil {
		common.WriteJSON(w, http.StatusConflict, common.ErrorBody{Error: err.Error()})
		return
	}

	var cfg chart.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "invalid config body: " + err.Error()})
		return
	}

	vc, err := chart.Validate(&cfg, entry.Dataset.Schema())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	spec, err := vc.Regenerate(entry.Dataset)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	fig, err := render.Figure(spec)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, fig)
}

// preview runs the validate/regenerate/render pipeline for a draft.
func (h *Handlers) preview(signals Signals, entry *registry.Entry) (*render.Fig, *chart.Spec, error) {
	cfg := signals.Config(entry.Dataset)
	vc, err := chart.Validate(cfg, entry.Dataset.Schema())
	if err != nil {
		return nil, nil, err
	}
	spec, err := vc.Regenerate(entry.Dataset)
	if err != nil {
		return nil, nil, err
	}
	fig, err := render.Figure(spec)
	if err != nil {
		return nil, nil, err
	}
	return fig, spec, nil
}

func (h *Handlers) patchStatus(sse *datastar.ServerSentEventGenerator, data StatusData) {
	var buf strings.Builder
	if err := resources.RenderFragment(&buf, "builder_status.html", data); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(buf.String()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func statusFromError(err error) StatusData {
	data := StatusData{Error: err.Error()}
	var mismatch *chart.SchemaMismatchError
	if errors.As(err, &mismatch) {
		data.Violations = mismatch.Violations
	}
	return data
}

// defaultSignals seeds the page's signal state from the dataset: first
// non-numeric column on x, first numeric column on y.
func defaultSignals(entry *registry.Entry) string {
	s := Signals{ChartType: string(chart.TypeBar), Aggregation: string(chart.AggNone), FilterOp: string(chart.OpEquals)}
	for _, col := range entry.Dataset.Schema() {
		if s.XAxis == "" && col.Type != dataset.ColNumber {
			s.XAxis = col.Name
		}
		if s.YAxis == "" && col.Type == dataset.ColNumber {
			s.YAxis = col.Name
		}
	}
	out, _ := json.Marshal(s)
	return string(out)
}
