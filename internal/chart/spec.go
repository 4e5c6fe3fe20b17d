package chart

import "github.com/leapstack-labs/chartsmith/internal/dataset"

// Series is one resolved y series, aligned index-for-index with Spec.X.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Spec is the renderer-ready description of a chart: concrete series data
// resolved from a validated configuration and a dataset. It carries no raw
// rows and no dataset reference, so it serializes cleanly.
type Spec struct {
	Type     Type            `json:"chart_type"`
	Title    string          `json:"title,omitempty"`
	XLabel   string          `json:"x_label"`
	X        []dataset.Value `json:"x"`
	Series   []Series        `json:"series"`
	RowCount int             `json:"row_count"`
}
