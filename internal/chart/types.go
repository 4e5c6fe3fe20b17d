// Package chart implements the chart configuration model: a serializable
// record of a user's chart request, validation of that record against a
// dataset schema, and regeneration of a renderer-ready chart specification
// from a validated record plus a dataset.
package chart

import (
	"fmt"
	"time"
)

// Type identifies a chart type. The set is closed; each type carries a
// fixed shape rule checked during validation.
type Type string

const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypeScatter   Type = "scatter"
	TypePie       Type = "pie"
	TypeHistogram Type = "histogram"
	TypeBox       Type = "box"
)

// Types lists every supported chart type in display order.
func Types() []Type {
	return []Type{TypeBar, TypeLine, TypeScatter, TypePie, TypeHistogram, TypeBox}
}

// ParseType validates a chart type string.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Op is a filter operator.
type Op string

const (
	OpEquals      Op = "equals"
	OpNotEquals   Op = "not_equals"
	OpGreaterThan Op = "greater_than"
	OpLessThan    Op = "less_than"
	OpInSet       Op = "in_set"
)

// Ops lists every supported filter operator.
func Ops() []Op {
	return []Op{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpInSet}
}

// ParseOp validates a filter operator string.
func ParseOp(s string) (Op, error) {
	for _, op := range Ops() {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown filter operator %q", s)
}

// Aggregation names the reduction applied to y values when multiple rows
// share one x value.
type Aggregation string

const (
	AggNone  Aggregation = "none"
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
	AggMax   Aggregation = "max"
	AggMin   Aggregation = "min"
)

// Aggregations lists every supported aggregation.
func Aggregations() []Aggregation {
	return []Aggregation{AggNone, AggSum, AggMean, AggCount, AggMax, AggMin}
}

// ParseAggregation validates an aggregation string. The empty string is
// treated as "none".
func ParseAggregation(s string) (Aggregation, error) {
	if s == "" {
		return AggNone, nil
	}
	for _, a := range Aggregations() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown aggregation %q", s)
}

// Filter is one row predicate. Filters combine with logical AND in the
// order stored. Value holds a JSON scalar (string, float64, bool) or, for
// in_set, a []any of scalars.
type Filter struct {
	Column string `json:"column"`
	Op     Op     `json:"operator"`
	Value  any    `json:"value"`
}

// Config is the durable record of a chart request. A Config is a Draft
// until saved; saving assigns an id and freezes it. Editing a saved config
// derives a fresh Draft via CopyToDraft.
type Config struct {
	Name        string      `json:"name,omitempty"`
	Type        Type        `json:"chart_type"`
	XAxis       string      `json:"x_axis"`
	YAxes       []string    `json:"y_axis"`
	Filters     []Filter    `json:"filters"`
	Aggregation Aggregation `json:"aggregation"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewDraft creates a Draft config with CreatedAt stamped now.
func NewDraft(name string, t Type, xAxis string, yAxes ...string) *Config {
	return &Config{
		Name:        name,
		Type:        t,
		XAxis:       xAxis,
		YAxes:       yAxes,
		Aggregation: AggNone,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// CopyToDraft returns an independent Draft carrying this config's selections
// with a fresh CreatedAt. The receiver is left untouched, so the original
// remains regenerable.
func (c *Config) CopyToDraft() *Config {
	draft := *c
	draft.Filters = append([]Filter(nil), c.Filters...)
	draft.YAxes = append([]string(nil), c.YAxes...)
	draft.CreatedAt = time.Now().UTC().Truncate(time.Second)
	return &draft
}

// DefaultName derives a display name from the config's selections, matching
// the "<type> | <x> vs <y>" convention used by the UI.
func (c *Config) DefaultName() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.YAxes) == 0 {
		return fmt.Sprintf("%s | %s", c.Type, c.XAxis)
	}
	return fmt.Sprintf("%s | %s vs %s", c.Type, c.XAxis, c.YAxes[0])
}
