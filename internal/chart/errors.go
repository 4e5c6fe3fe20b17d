package chart

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult indicates the configured filters eliminated every row, so
// no chart can be drawn. Callers surface this instead of rendering an
// empty, misleading chart.
var ErrEmptyResult = errors.New("filters match no rows")

// ErrEmptySchema indicates validation was given a dataset with no columns.
var ErrEmptySchema = errors.New("dataset schema is empty")

// Violation is one unmet requirement found during validation.
type Violation struct {
	Column string `json:"column,omitempty"`
	Op     Op     `json:"operator,omitempty"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	if v.Column == "" {
		return v.Reason
	}
	return fmt.Sprintf("%s: %s", v.Column, v.Reason)
}

// SchemaMismatchError reports every way a configuration fails to fit a
// dataset schema, not just the first, so the caller can surface all
// problems at once.
type SchemaMismatchError struct {
	Violations []Violation
}

func (e *SchemaMismatchError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "schema mismatch: " + strings.Join(parts, "; ")
}
