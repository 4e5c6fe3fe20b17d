package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/testutil"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

func setupFeature(t *testing.T) (chi.Router, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	router := chi.NewRouter()
	err := SetupRoutes(router, reg, sessions.NewCookieStore([]byte("test-secret")), notifier.New(), testutil.NewTestLogger(t))
	require.NoError(t, err)
	return router, reg
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadCSV(t *testing.T) {
	router, reg := setupFeature(t)

	body, contentType := multipartBody(t, "sales.csv", "region,sales\nNA,10\nEU,20\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, reg.Len())

	var item DatasetItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "sales.csv", item.Name)
	assert.Equal(t, 2, item.Rows)
	assert.Equal(t, 2, item.Columns)

	// Session cookie marks the upload as the active dataset
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestUploadBrowserRedirects(t *testing.T) {
	router, _ := setupFeature(t)

	body, contentType := multipartBody(t, "sales.csv", "region,sales\nNA,10\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/html")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/builder?dataset=")
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	router, reg := setupFeature(t)

	body, contentType := multipartBody(t, "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestUploadRejectsMalformedCSV(t *testing.T) {
	router, _ := setupFeature(t)

	body, contentType := multipartBody(t, "bad.csv", "a,b\n1,2,3\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListAndDetail(t *testing.T) {
	router, reg := setupFeature(t)

	ds, err := dataset.FromCSV(strings.NewReader("region,sales\nNA,10\nEU,20\n"), "sales.csv", dataset.CSVOptions{})
	require.NoError(t, err)
	entry := reg.Put("sales.csv", ds)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []DatasetItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, entry.ID, items[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+entry.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail DatasetDetailView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Schema, 2)
	assert.Equal(t, "number", detail.Schema[1].Type)
	require.Len(t, detail.Preview, 2)
	assert.Equal(t, []string{"NA", "10"}, detail.Preview[0])
}

func TestDetailNotFound(t *testing.T) {
	router, _ := setupFeature(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemove(t *testing.T) {
	router, reg := setupFeature(t)

	ds, err := dataset.FromCSV(strings.NewReader("a\n1\n"), "a.csv", dataset.CSVOptions{})
	require.NoError(t, err)
	entry := reg.Put("a.csv", ds)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+entry.ID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, reg.Len())
}
