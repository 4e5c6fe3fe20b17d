// Package common holds helpers shared by the UI feature packages.
package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/store"
)

// ErrorBody is the JSON error payload returned by the API.
type ErrorBody struct {
	Error      string            `json:"error"`
	Violations []chart.Violation `json:"violations,omitempty"`
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps domain errors onto HTTP statuses: bad input files and
// schema mismatches are 422, a missing config is 404, an empty result set
// is 409 (the request was well-formed, the data disagrees). Everything
// else is a 500.
func WriteError(w http.ResponseWriter, err error) {
	body := ErrorBody{Error: err.Error()}

	var (
		parseErr    *dataset.ParseError
		mismatchErr *chart.SchemaMismatchError
	)
	switch {
	case errors.As(err, &mismatchErr):
		body.Violations = mismatchErr.Violations
		WriteJSON(w, http.StatusUnprocessableEntity, body)
	case errors.As(err, &parseErr):
		WriteJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, chart.ErrEmptyResult):
		WriteJSON(w, http.StatusConflict, body)
	case errors.Is(err, store.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, body)
	case errors.Is(err, chart.ErrEmptySchema):
		WriteJSON(w, http.StatusUnprocessableEntity, body)
	default:
		WriteJSON(w, http.StatusInternalServerError, body)
	}
}
