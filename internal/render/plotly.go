// Package render turns a resolved chart specification into a Plotly figure
// payload. The web UI hands the JSON straight to Plotly.js; the render CLI
// command writes it to disk. Nothing here touches raw datasets.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/chartsmith/internal/chart"
)

// Trace is one Plotly data trace. Fields are a small subset of the Plotly
// schema, enough for the supported chart types.
type Trace struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Mode   string `json:"mode,omitempty"`
	X      []any  `json:"x,omitempty"`
	Y      []any  `json:"y,omitempty"`
	Labels []any  `json:"labels,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// Layout is the figure-level layout block.
type Layout struct {
	Title string     `json:"title,omitempty"`
	XAxis *AxisTitle `json:"xaxis,omitempty"`
	YAxis *AxisTitle `json:"yaxis,omitempty"`
}

// AxisTitle titles one axis.
type AxisTitle struct {
	Title string `json:"title"`
}

// Fig is a complete Plotly figure.
type Fig struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Figure maps a Spec onto Plotly traces. The mapping is a fixed per-type
// table; output is a pure, deterministic function of the Spec.
func Figure(spec *chart.Spec) (*Fig, error) {
	x := make([]any, len(spec.X))
	for i, v := range spec.X {
		x[i] = v.Native()
	}

	fig := &Fig{
		Layout: Layout{
			Title: spec.Title,
			XAxis: &AxisTitle{Title: spec.XLabel},
		},
	}

	switch spec.Type {
	case chart.TypeBar, chart.TypeLine, chart.TypeScatter, chart.TypeBox:
		traceType := map[chart.Type]string{
			chart.TypeBar:     "bar",
			chart.TypeLine:    "scatter",
			chart.TypeScatter: "scatter",
			chart.TypeBox:     "box",
		}[spec.Type]

		for _, s := range spec.Series {
			trace := Trace{
				Type: traceType,
				Name: s.Label,
				X:    x,
				Y:    floatsToAny(s.Values),
			}
			switch spec.Type {
			case chart.TypeLine:
				trace.Mode = "lines"
			case chart.TypeScatter:
				trace.Mode = "markers"
			}
			fig.Data = append(fig.Data, trace)
		}
		if len(spec.Series) > 0 {
			fig.Layout.YAxis = &AxisTitle{Title: spec.Series[0].Label}
		}

	case chart.TypePie:
		if len(spec.Series) != 1 {
			return nil, fmt.Errorf("pie chart requires exactly one series, got %d", len(spec.Series))
		}
		fig.Data = []Trace{{
			Type:   "pie",
			Name:   spec.Series[0].Label,
			Labels: x,
			Values: floatsToAny(spec.Series[0].Values),
		}}
		fig.Layout.XAxis = nil

	case chart.TypeHistogram:
		fig.Data = []Trace{{
			Type: "histogram",
			Name: spec.XLabel,
			X:    x,
		}}

	default:
		return nil, fmt.Errorf("unknown chart type %q", spec.Type)
	}

	return fig, nil
}

// FigureJSON renders the figure as JSON.
func FigureJSON(spec *chart.Spec) ([]byte, error) {
	fig, err := Figure(spec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fig)
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
