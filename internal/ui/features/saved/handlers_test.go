package saved

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/testutil"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

func setupFeature(t *testing.T) (chi.Router, *store.SQLiteStore, *registry.Registry) {
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
	return router, st, reg
}

func barConfigJSON() string {
	return `{
		"name": "sales by region",
		"chart_type": "bar",
		"x_axis": "region",
		"y_axis": ["sales"],
		"filters": [],
		"aggregation": "sum"
	}`
}

func TestCreateAndGet(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created["id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"], nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sc store.SavedConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "sales by region", sc.Config.Name)
	assert.Equal(t, []string{"sales"}, sc.Config.YAxes)
}

func TestCreateRejectsSchemaMismatch(t *testing.T) {
	router, _, _ := setupFeature(t)

	body := `{"chart_type":"bar","x_axis":"ghost","y_axis":["region"],"aggregation":"sum"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "violations")
}

func TestCreateRejectsEmptyResult(t *testing.T) {
	router, _, _ := setupFeature(t)

	body := `{
		"chart_type": "bar",
		"x_axis": "region",
		"y_axis": ["sales"],
		"filters": [{"column": "sales", "operator": "greater_than", "value": 100}],
		"aggregation": "sum"
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(body)))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetNotFound(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/no-such-id", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/configs/"+created["id"], nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/configs/"+created["id"], nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateReturnsFigure(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/"+created["id"]+"/regenerate", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fig struct {
		Data []struct {
			Type string   `json:"type"`
			X    []any    `json:"x"`
			Y    []float64 `json:"y"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "bar", fig.Data[0].Type)
	// sum(sales) grouped by region, first occurrence order
	assert.Equal(t, []float64{15, 20}, fig.Data[0].Y)
}

func TestExportFormats(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"]+"/export?format=yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".yaml")
	assert.Contains(t, rec.Body.String(), "chart_type: bar")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"]+"/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chart_type": "bar"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"]+"/export?format=toml", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportRoundTrip(t *testing.T) {
	router, _, _ := setupFeature(t)

	doc := `
name: imported chart
chart_type: line
x_axis: region
y_axis:
  - sales
filters: []
aggregation: mean
`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/import?format=yaml", strings.NewReader(doc)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"], nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sc store.SavedConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "imported chart", sc.Config.Name)
	assert.Equal(t, "mean", string(sc.Config.Aggregation))
}

func TestImportRejectsUnknownType(t *testing.T) {
	router, _, _ := setupFeature(t)

	body := `{"chart_type":"sunburst","x_axis":"region","y_axis":["sales"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/import", strings.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDataDownload(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"]+"/data?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "region,sum(sales)\nNA,15\nEU,20\n", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/configs/"+created["id"]+"/data?format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx download should be a zip archive")
}

func TestSavedPageRenders(t *testing.T) {
	router, _, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/configs/", strings.NewReader(barConfigJSON())))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/saved", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales by region")
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "sales_by_region", safeFilename("sales by region"))
	assert.Equal(t, "chart", safeFilename("///"))
}
