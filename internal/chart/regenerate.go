package chart

import (
	"fmt"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// Regenerate resolves the validated configuration against ds and produces a
// renderer-ready Spec. ds need not be the dataset instance the config was
// validated against, but it must carry a compatible schema.
//
// Filters apply in stored order as a logical AND; a row is kept only if it
// satisfies every filter. Surviving rows keep their original order. With an
// aggregation other than none, rows group by x value in first-occurrence
// order and each y column reduces per group. The result is deterministic:
// the same (config, dataset) pair always yields an identical Spec.
//
// Returns an error wrapping ErrEmptyResult when no rows survive filtering.
func (vc *ValidatedConfig) Regenerate(ds *dataset.Dataset) (*Spec, error) {
	cfg := vc.cfg

	xIdx := ds.ColumnIndex(cfg.XAxis)
	if xIdx < 0 {
		return nil, &SchemaMismatchError{Violations: []Violation{
			{Column: cfg.XAxis, Reason: "column not present in dataset"},
		}}
	}
	yIdx := make([]int, len(cfg.YAxes))
	for i, y := range cfg.YAxes {
		yIdx[i] = ds.ColumnIndex(y)
		if yIdx[i] < 0 {
			return nil, &SchemaMismatchError{Violations: []Violation{
				{Column: y, Reason: "column not present in dataset"},
			}}
		}
	}

	rows, err := filterRows(ds, cfg.Filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("regenerate %q: %w", cfg.DefaultName(), ErrEmptyResult)
	}

	spec := &Spec{
		Type:   cfg.Type,
		Title:  cfg.DefaultName(),
		XLabel: cfg.XAxis,
	}

	if cfg.Aggregation == AggNone || cfg.Aggregation == "" {
		spec.X = make([]dataset.Value, len(rows))
		for i, row := range rows {
			spec.X[i] = row[xIdx]
		}
		spec.Series = make([]Series, len(yIdx))
		for s, idx := range yIdx {
			values := make([]float64, len(rows))
			for i, row := range rows {
				values[i], _ = row[idx].Float()
			}
			spec.Series[s] = Series{Label: cfg.YAxes[s], Values: values}
		}
		spec.RowCount = len(rows)
		return spec, nil
	}

	// Group by x value, preserving first-occurrence order of keys.
	type group struct {
		x    dataset.Value
		rows [][]dataset.Value
	}
	var order []string
	groups := make(map[string]*group)
	for _, row := range rows {
		key := row[xIdx].Key()
		g, ok := groups[key]
		if !ok {
			g = &group{x: row[xIdx]}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	spec.X = make([]dataset.Value, len(order))
	for i, key := range order {
		spec.X[i] = groups[key].x
	}
	spec.Series = make([]Series, len(yIdx))
	for s, idx := range yIdx {
		values := make([]float64, len(order))
		for i, key := range order {
			values[i] = reduce(cfg.Aggregation, groups[key].rows, idx)
		}
		spec.Series[s] = Series{Label: seriesLabel(cfg.Aggregation, cfg.YAxes[s]), Values: values}
	}
	spec.RowCount = len(rows)
	return spec, nil
}

// filterRows applies every filter in order; a row survives only if it
// satisfies all of them.
func filterRows(ds *dataset.Dataset, filters []Filter) ([][]dataset.Value, error) {
	if len(filters) == 0 {
		return ds.Rows, nil
	}

	idx := make([]int, len(filters))
	for i, f := range filters {
		idx[i] = ds.ColumnIndex(f.Column)
		if idx[i] < 0 {
			return nil, &SchemaMismatchError{Violations: []Violation{
				{Column: f.Column, Op: f.Op, Reason: "column not present in dataset"},
			}}
		}
	}

	var kept [][]dataset.Value
	for _, row := range ds.Rows {
		match := true
		for i, f := range filters {
			if !matches(f, row[idx[i]]) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// matches evaluates one filter predicate against a cell.
func matches(f Filter, v dataset.Value) bool {
	switch f.Op {
	case OpEquals:
		return cellEquals(v, f.Value)
	case OpNotEquals:
		return !cellEquals(v, f.Value)
	case OpGreaterThan:
		cell, ok := v.Float()
		want, wok := toFloat(f.Value)
		return ok && wok && cell > want
	case OpLessThan:
		cell, ok := v.Float()
		want, wok := toFloat(f.Value)
		return ok && wok && cell < want
	case OpInSet:
		set, ok := f.Value.([]any)
		if !ok {
			return false
		}
		for _, member := range set {
			if cellEquals(v, member) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// cellEquals compares a typed cell against a filter scalar. Numeric cells
// compare numerically; everything else compares against the cell's
// canonical rendering, so "true" matches a bool cell and an RFC 3339 string
// matches a time cell.
func cellEquals(v dataset.Value, want any) bool {
	if v.Kind == dataset.ColNumber {
		f, ok := toFloat(want)
		return ok && v.Num == f
	}
	if s, ok := want.(string); ok {
		return v.Render() == s
	}
	if b, ok := want.(bool); ok {
		return v.Kind == dataset.ColBool && v.Bool == b
	}
	return false
}

// reduce applies the aggregation to one y column across a group's rows.
func reduce(agg Aggregation, rows [][]dataset.Value, idx int) float64 {
	switch agg {
	case AggCount:
		return float64(len(rows))
	case AggSum, AggMean:
		sum := 0.0
		for _, row := range rows {
			f, _ := row[idx].Float()
			sum += f
		}
		if agg == AggMean {
			return sum / float64(len(rows))
		}
		return sum
	case AggMax:
		best, _ := rows[0][idx].Float()
		for _, row := range rows[1:] {
			if f, _ := row[idx].Float(); f > best {
				best = f
			}
		}
		return best
	case AggMin:
		best, _ := rows[0][idx].Float()
		for _, row := range rows[1:] {
			if f, _ := row[idx].Float(); f < best {
				best = f
			}
		}
		return best
	default:
		return 0
	}
}

// seriesLabel names an aggregated series, e.g. "sum(sales)".
func seriesLabel(agg Aggregation, column string) string {
	if agg == AggNone || agg == "" {
		return column
	}
	return fmt.Sprintf("%s(%s)", agg, column)
}
