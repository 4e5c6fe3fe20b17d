package chart

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// shapeRule is the per-type constraint on axis combinations. The rule set
// is a fixed lookup table; adding a chart type means adding a row here.
type shapeRule struct {
	minY         int
	maxY         int // -1 means unbounded
	numericX     bool
	categoricalX bool
	numericY     bool
	allowAgg     bool
}

var shapeRules = map[Type]shapeRule{
	TypeBar:       {minY: 1, maxY: -1, numericY: true, allowAgg: true},
	TypeLine:      {minY: 1, maxY: -1, numericY: true, allowAgg: true},
	TypeScatter:   {minY: 1, maxY: -1, numericX: true, numericY: true},
	TypePie:       {minY: 1, maxY: 1, categoricalX: true, numericY: true, allowAgg: true},
	TypeHistogram: {minY: 0, maxY: 0},
	TypeBox:       {minY: 1, maxY: -1, numericY: true},
}

// ValidatedConfig wraps a Config that has been checked against a dataset
// schema. It is the only path into Regenerate.
type ValidatedConfig struct {
	cfg    Config
	schema []dataset.Column
}

// Config returns a copy of the validated configuration.
func (vc *ValidatedConfig) Config() Config {
	return vc.cfg
}

// Schema returns the schema the configuration was validated against.
func (vc *ValidatedConfig) Schema() []dataset.Column {
	return vc.schema
}

// Validate checks cfg against schema: every referenced column must exist,
// the chart type's shape rule must hold, numeric operators must target
// numeric columns, and the aggregation must fit the chart type. It is a
// pure function.
//
// On failure the returned error is a *SchemaMismatchError listing every
// violation found, so a caller can report all problems at once.
func Validate(cfg *Config, schema []dataset.Column) (*ValidatedConfig, error) {
	if len(schema) == 0 {
		return nil, ErrEmptySchema
	}

	cols := make(map[string]dataset.Column, len(schema))
	for _, c := range schema {
		cols[c.Name] = c
	}

	var violations []Violation
	add := func(column string, op Op, format string, args ...any) {
		violations = append(violations, Violation{
			Column: column,
			Op:     op,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	rule, known := shapeRules[cfg.Type]
	if !known {
		add("", "", "unknown chart type %q", cfg.Type)
	}

	// X axis.
	xCol, xOK := cols[cfg.XAxis]
	switch {
	case cfg.XAxis == "":
		add("", "", "x_axis is required")
	case !xOK:
		add(cfg.XAxis, "", "column not present in dataset")
	case known && rule.numericX && xCol.Type != dataset.ColNumber:
		add(cfg.XAxis, "", "%s charts require a numeric x_axis, column is %s", cfg.Type, xCol.Type)
	case known && rule.categoricalX && xCol.Type != dataset.ColString:
		add(cfg.XAxis, "", "%s charts require a categorical x_axis, column is %s", cfg.Type, xCol.Type)
	}

	// Y axes.
	if known {
		if len(cfg.YAxes) < rule.minY {
			add("", "", "%s charts require at least %d y_axis column(s), got %d", cfg.Type, rule.minY, len(cfg.YAxes))
		}
		if rule.maxY >= 0 && len(cfg.YAxes) > rule.maxY {
			if rule.maxY == 0 {
				add("", "", "%s charts take no y_axis, got %d", cfg.Type, len(cfg.YAxes))
			} else {
				add("", "", "%s charts take at most %d y_axis column(s), got %d", cfg.Type, rule.maxY, len(cfg.YAxes))
			}
		}
	}
	for _, y := range cfg.YAxes {
		yCol, ok := cols[y]
		if !ok {
			add(y, "", "column not present in dataset")
			continue
		}
		if known && rule.numericY && yCol.Type != dataset.ColNumber {
			add(y, "", "%s charts require numeric y_axis columns, column is %s", cfg.Type, yCol.Type)
		}
	}

	// Filters.
	for _, f := range cfg.Filters {
		if _, err := ParseOp(string(f.Op)); err != nil {
			add(f.Column, f.Op, "unknown operator")
			continue
		}
		fCol, ok := cols[f.Column]
		if !ok {
			add(f.Column, f.Op, "column not present in dataset")
			continue
		}
		switch f.Op {
		case OpGreaterThan, OpLessThan:
			if fCol.Type != dataset.ColNumber {
				add(f.Column, f.Op, "numeric comparison on %s column", fCol.Type)
			}
			if _, ok := toFloat(f.Value); !ok {
				add(f.Column, f.Op, "filter value %v is not numeric", f.Value)
			}
		case OpInSet:
			if _, ok := f.Value.([]any); !ok {
				add(f.Column, f.Op, "in_set filter value must be a list")
			}
		case OpEquals, OpNotEquals:
			if fCol.Type == dataset.ColNumber {
				if _, ok := toFloat(f.Value); !ok {
					add(f.Column, f.Op, "filter value %v is not numeric", f.Value)
				}
			}
		}
	}

	// Aggregation.
	agg := cfg.Aggregation
	if agg == "" {
		agg = AggNone
	}
	if _, err := ParseAggregation(string(agg)); err != nil {
		add("", "", "unknown aggregation %q", cfg.Aggregation)
	} else if agg != AggNone && known && !rule.allowAgg {
		add("", "", "%s charts do not support aggregation", cfg.Type)
	}

	if len(violations) > 0 {
		return nil, &SchemaMismatchError{Violations: violations}
	}

	vc := &ValidatedConfig{
		cfg:    *cfg,
		schema: append([]dataset.Column(nil), schema...),
	}
	vc.cfg.Aggregation = agg
	vc.cfg.Filters = append([]Filter(nil), cfg.Filters...)
	vc.cfg.YAxes = append([]string(nil), cfg.YAxes...)
	return vc, nil
}

// toFloat coerces a filter value to float64. JSON decoding produces
// float64; Go-constructed configs may carry ints.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
