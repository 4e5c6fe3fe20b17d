package export

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/chartsmith/internal/chart"
)

// Format selects a configuration serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format string. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown config format %q (want json or yaml)", s)
	}
}

// configDoc is the portable form of a chart.Config. Field names follow the
// persisted record layout, so an exported file re-imports losslessly.
type configDoc struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	ChartType   string      `json:"chart_type" yaml:"chart_type"`
	XAxis       string      `json:"x_axis" yaml:"x_axis"`
	YAxis       []string    `json:"y_axis" yaml:"y_axis"`
	Filters     []filterDoc `json:"filters" yaml:"filters"`
	Aggregation string      `json:"aggregation" yaml:"aggregation"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
}

type filterDoc struct {
	Column   string `json:"column" yaml:"column"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
}

// MarshalConfig serializes cfg in the requested format.
func MarshalConfig(cfg *chart.Config, format Format) ([]byte, error) {
	doc := configDoc{
		Name:        cfg.Name,
		ChartType:   string(cfg.Type),
		XAxis:       cfg.XAxis,
		YAxis:       cfg.YAxes,
		Filters:     make([]filterDoc, len(cfg.Filters)),
		Aggregation: string(cfg.Aggregation),
		CreatedAt:   cfg.CreatedAt,
	}
	if doc.Aggregation == "" {
		doc.Aggregation = string(chart.AggNone)
	}
	if doc.YAxis == nil {
		doc.YAxis = []string{}
	}
	for i, f := range cfg.Filters {
		doc.Filters[i] = filterDoc{Column: f.Column, Operator: string(f.Op), Value: f.Value}
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return json.MarshalIndent(doc, "", "  ")
	}
}

// UnmarshalConfig parses a serialized configuration, rejecting unknown
// chart types, operators, and aggregations with errors naming the field.
func UnmarshalConfig(data []byte, format Format) (*chart.Config, error) {
	var doc configDoc
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	chartType, err := chart.ParseType(doc.ChartType)
	if err != nil {
		return nil, fmt.Errorf("chart_type: %w", err)
	}
	agg, err := chart.ParseAggregation(doc.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("aggregation: %w", err)
	}

	cfg := &chart.Config{
		Name:        doc.Name,
		Type:        chartType,
		XAxis:       doc.XAxis,
		YAxes:       doc.YAxis,
		Aggregation: agg,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	for i, f := range doc.Filters {
		op, err := chart.ParseOp(f.Operator)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		cfg.Filters = append(cfg.Filters, chart.Filter{
			Column: f.Column,
			Op:     op,
			Value:  normalizeFilterValue(f.Value),
		})
	}
	return cfg, nil
}

// normalizeFilterValue aligns YAML decoding with JSON decoding: YAML
// produces ints and []any of mixed scalars where JSON produces float64.
func normalizeFilterValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case []any:
		out := make([]any, len(n))
		for i, m := range n {
			out[i] = normalizeFilterValue(m)
		}
		return out
	default:
		return v
	}
}
