package builder

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// Signals is the state the builder page binds and posts back.
type Signals struct {
	Name        string `json:"name"`
	ChartType   string `json:"chartType"`
	XAxis       string `json:"xAxis"`
	YAxis       string `json:"yAxis"`
	Aggregation string `json:"aggregation"`
	FilterCol   string `json:"filterColumn"`
	FilterOp    string `json:"filterOp"`
	FilterValue string `json:"filterValue"`
}

// Config turns the flat signal state into a draft chart configuration.
// Filter values stay strings unless the filtered column is numeric.
func (s Signals) Config(ds *dataset.Dataset) *chart.Config {
	cfg := chart.NewDraft(strings.TrimSpace(s.Name), chart.Type(s.ChartType), s.XAxis, splitList(s.YAxis)...)
	if agg, err := chart.ParseAggregation(s.Aggregation); err == nil {
		cfg.Aggregation = agg
	} else {
		// Keep the raw value so validation reports it.
		cfg.Aggregation = chart.Aggregation(s.Aggregation)
	}

	if s.FilterCol != "" {
		cfg.Filters = append(cfg.Filters, chart.Filter{
			Column: s.FilterCol,
			Op:     chart.Op(s.FilterOp),
			Value:  filterValue(ds, s.FilterCol, chart.Op(s.FilterOp), s.FilterValue),
		})
	}
	return cfg
}

// splitList splits a comma separated field into trimmed names.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// filterValue coerces the raw input for the column it targets: numeric
// columns get float values, in_set gets a list, everything else stays a
// string.
func filterValue(ds *dataset.Dataset, column string, op chart.Op, raw string) any {
	raw = strings.TrimSpace(raw)
	numeric := false
	if col, ok := ds.Column(column); ok {
		numeric = col.Type == dataset.ColNumber
	}

	if op == chart.OpInSet {
		var set []any
		for _, part := range splitList(raw) {
			set = append(set, coerceScalar(part, numeric))
		}
		return set
	}
	return coerceScalar(raw, numeric)
}

func coerceScalar(raw string, numeric bool) any {
	if numeric {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

// ViewData holds everything the builder page renders.
type ViewData struct {
	Title        string
	Nav          string
	DatasetName  string
	RowCount     int
	Columns      []ColumnView
	ChartTypes   []string
	Operators    []string
	Aggregations []string
	Signals      string
}

// ColumnView is one selectable column.
type ColumnView struct {
	Name string
	Type string
}

// StatusData feeds the builder status fragment.
type StatusData struct {
	Message    string
	Error      string
	Violations []chart.Violation
}
