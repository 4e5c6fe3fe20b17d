package home

import (
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
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

func setupFeature(t *testing.T) (chi.Router, *registry.Registry) {
	t.Helper()

	st := store.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, st.Open(":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	reg := registry.New()
	router := chi.NewRouter()
	err := SetupRoutes(router, st, reg, sessions.NewCookieStore([]byte("test-secret")), notifier.New())
	require.NoError(t, err)
	return router, reg
}

func TestHomePageEmpty(t *testing.T) {
	router, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No datasets loaded yet")
}

func TestHomePageListsDatasets(t *testing.T) {
	router, reg := setupFeature(t)

	ds, err := dataset.FromCSV(strings.NewReader("region,sales\nNA,10\nEU,20\n"), "sales.csv", dataset.CSVOptions{})
	require.NoError(t, err)
	reg.Put("sales.csv", ds)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sales.csv")
	assert.Contains(t, body, "Build chart")
}
