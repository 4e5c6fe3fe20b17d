package builder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/testutil"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

func setupFeature(t *testing.T) (chi.Router, *registry.Registry, *dataset.Dataset) {
	t.Helper()

	st := store.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, st.Open(":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	reg := registry.New()
	ds, err := dataset.FromCSV(strings.NewReader("region,sales\nNA,10\nEU,20\nNA,5\n"), "sales.csv", dataset.CSVOptions{})
	require.NoError(t, err)
	reg.Put("sales.csv", ds)

	router := chi.NewRouter()
	require.NoError(t, SetupRoutes(router, st, reg, sessions.NewCookieStore([]byte("test-secret"))))
	return router, reg, ds
}

func TestBuilderPageRenders(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/builder", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sales.csv")
	assert.Contains(t, body, "histogram")
	assert.Contains(t, body, "greater_than")
}

func TestBuilderPageRedirectsWithoutDataset(t *testing.T) {
	router, reg, _ := setupFeature(t)
	for _, e := range reg.List() {
		reg.Remove(e.ID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/builder", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestPreviewJSON(t *testing.T) {
	router, _, _ := setupFeature(t)

	body := `{
		"chart_type": "bar",
		"x_axis": "region",
		"y_axis": ["sales"],
		"aggregation": "sum"
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var fig struct {
		Data []struct {
			Y []float64 `json:"y"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	require.Len(t, fig.Data, 1)
	assert.Equal(t, []float64{15, 20}, fig.Data[0].Y)
}

func TestPreviewJSONSchemaMismatch(t *testing.T) {
	router, _, _ := setupFeature(t)

	body := `{"chart_type":"bar","x_axis":"ghost","y_axis":["sales"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSignalsConfig(t *testing.T) {
	_, _, ds := setupFeature(t)

	s := Signals{
		Name:        " Q3 sales ",
		ChartType:   "bar",
		XAxis:       "region",
		YAxis:       "sales, sales",
		Aggregation: "sum",
		FilterCol:   "sales",
		FilterOp:    "greater_than",
		FilterValue: "7",
	}
	cfg := s.Config(ds)

	assert.Equal(t, "Q3 sales", cfg.Name)
	assert.Equal(t, chart.TypeBar, cfg.Type)
	assert.Equal(t, []string{"sales", "sales"}, cfg.YAxes)
	assert.Equal(t, chart.AggSum, cfg.Aggregation)
	require.Len(t, cfg.Filters, 1)
	// Numeric column, so the raw string input is coerced
	assert.Equal(t, float64(7), cfg.Filters[0].Value)
}

func TestSignalsConfigInSet(t *testing.T) {
	_, _, ds := setupFeature(t)

	s := Signals{
		ChartType:   "bar",
		XAxis:       "region",
		YAxis:       "sales",
		FilterCol:   "region",
		FilterOp:    "in_set",
		FilterValue: "NA, EU",
	}
	cfg := s.Config(ds)

	require.Len(t, cfg.Filters, 1)
	assert.Equal(t, []any{"NA", "EU"}, cfg.Filters[0].Value)
}

func TestSignalsConfigEmptyAggregation(t *testing.T) {
	_, _, ds := setupFeature(t)

	cfg := Signals{ChartType: "scatter", XAxis: "sales", YAxis: "sales"}.Config(ds)
	assert.Equal(t, chart.AggNone, cfg.Aggregation)
}

func TestPreviewSSEPushesFigure(t *testing.T) {
	router, _, _ := setupFeature(t)

	signals := `{"chartType":"bar","xAxis":"region","yAxis":"sales","aggregation":"sum"}`
	req := httptest.NewRequest(http.MethodPost, "/builder/preview", strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "window.renderChart")
	assert.Contains(t, body, "rows after filters")
}

func TestSaveSSEPersists(t *testing.T) {
	router, _, _ := setupFeature(t)

	signals := `{"chartType":"bar","xAxis":"region","yAxis":"sales","aggregation":"sum"}`
	req := httptest.NewRequest(http.MethodPost, "/builder/save", strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "saved as ")
}

func TestSaveSSEReportsViolations(t *testing.T) {
	router, _, _ := setupFeature(t)

	signals := `{"chartType":"pie","xAxis":"region","yAxis":"sales, sales"}`
	req := httptest.NewRequest(http.MethodPost, "/builder/save", strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "builder-status")
}
