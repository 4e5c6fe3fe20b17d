package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/export"
)

// NewBuilderCommand creates the interactive builder command.
func NewBuilderCommand() *cobra.Command {
	var (
		datasetPath string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Build a chart configuration interactively in the terminal",
		Long: `Walk through chart type, axes, aggregation and an optional filter for a
dataset, validating as you go, and write the result as a JSON config file.`,
		Example: `  chartsmith builder --dataset sales.csv --out chart.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			ds, err := loadDataset(cmd.Context(), cfg, datasetPath)
			if err != nil {
				return err
			}
			return runBuilder(cmd, ds, datasetPath, outPath)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset file to build against (required)")
	cmd.Flags().StringVar(&outPath, "out", "chart.json", "Where to write the config")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func runBuilder(cmd *cobra.Command, ds *dataset.Dataset, datasetPath, outPath string) error {
	model := newBuilderModel(ds, datasetPath)
	prog := tea.NewProgram(model, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))

	final, err := prog.Run()
	if err != nil {
		return err
	}

	m, ok := final.(builderModel)
	if !ok || m.aborted {
		return fmt.Errorf("aborted")
	}

	doc, err := export.MarshalConfig(m.cfg, export.FormatJSON)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}

// builder wizard steps, in order.
const (
	stepType = iota
	stepXAxis
	stepYAxes
	stepAggregation
	stepFilter
	stepDone
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

type builderModel struct {
	ds          *dataset.Dataset
	datasetPath string

	step    int
	choices []string
	cursor  int
	input   textinput.Model

	chartType   chart.Type
	xAxis       string
	yAxes       []string
	aggregation chart.Aggregation

	cfg     *chart.Config
	errMsg  string
	aborted bool
}

func newBuilderModel(ds *dataset.Dataset, datasetPath string) builderModel {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 256

	m := builderModel{
		ds:          ds,
		datasetPath: datasetPath,
		input:       input,
	}
	m.enterStep(stepType)
	return m
}

func (m builderModel) Init() tea.Cmd {
	return textinput.Blink
}

// enterStep resets the choice list or text input for a step.
func (m *builderModel) enterStep(step int) {
	m.step = step
	m.cursor = 0
	m.errMsg = ""

	switch step {
	case stepType:
		m.choices = nil
		for _, t := range chart.Types() {
			m.choices = append(m.choices, string(t))
		}
	case stepXAxis:
		m.choices = nil
		for _, col := range m.ds.Schema() {
			m.choices = append(m.choices, fmt.Sprintf("%s (%s)", col.Name, col.Type))
		}
	case stepYAxes:
		m.choices = nil
		m.input.SetValue("")
		m.input.Placeholder = "y columns, comma separated"
		m.input.Focus()
	case stepAggregation:
		m.choices = nil
		for _, agg := range chart.Aggregations() {
			m.choices = append(m.choices, string(agg))
		}
	case stepFilter:
		m.choices = nil
		m.input.SetValue("")
		m.input.Placeholder = "optional filter: column op value (empty to skip)"
		m.input.Focus()
	}
}

func (m builderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit

	case "up", "k":
		if len(m.choices) > 0 && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if len(m.choices) > 0 && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		return m.advance()
	}

	if len(m.choices) == 0 {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// advance commits the current step and moves to the next, validating the
// completed draft at the end.
func (m builderModel) advance() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepType:
		m.chartType = chart.Types()[m.cursor]
		m.enterStep(stepXAxis)

	case stepXAxis:
		m.xAxis = m.ds.Schema()[m.cursor].Name
		if m.chartType == chart.TypeHistogram {
			// Histograms take no y columns
			m.yAxes = nil
			m.enterStep(stepFilter)
		} else {
			m.enterStep(stepYAxes)
		}

	case stepYAxes:
		m.yAxes = nil
		for _, part := range strings.Split(m.input.Value(), ",") {
			if part = strings.TrimSpace(part); part != "" {
				m.yAxes = append(m.yAxes, part)
			}
		}
		if len(m.yAxes) == 0 {
			m.errMsg = "at least one y column is required"
			return m, nil
		}
		m.enterStep(stepAggregation)

	case stepAggregation:
		m.aggregation = chart.Aggregations()[m.cursor]
		m.enterStep(stepFilter)

	case stepFilter:
		cfg := chart.NewDraft("", m.chartType, m.xAxis, m.yAxes...)
		cfg.Aggregation = m.aggregation
		if raw := strings.TrimSpace(m.input.Value()); raw != "" {
			filter, err := parseFilterExpr(m.ds, raw)
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			cfg.Filters = append(cfg.Filters, filter)
		}
		if _, err := chart.Validate(cfg, m.ds.Schema()); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.step = stepDone
		return m, tea.Quit
	}
	return m, nil
}

func (m builderModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chartsmith builder"))
	b.WriteString(hintStyle.Render(fmt.Sprintf("  %s, %d rows\n\n", m.datasetPath, m.ds.RowCount())))

	switch m.step {
	case stepType:
		b.WriteString("Chart type:\n")
	case stepXAxis:
		b.WriteString("X axis column:\n")
	case stepYAxes:
		b.WriteString("Y axis columns:\n")
	case stepAggregation:
		b.WriteString("Aggregation:\n")
	case stepFilter:
		b.WriteString("Filter (e.g. \"sales greater_than 100\"):\n")
	}

	if len(m.choices) > 0 {
		for i, choice := range m.choices {
			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}
			b.WriteString(cursor + choice + "\n")
		}
	} else {
		b.WriteString(m.input.View() + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(hintStyle.Render("\nenter to confirm, esc to abort\n"))
	return b.String()
}

// parseFilterExpr parses "column op value" with the same value coercion the
// web builder applies.
func parseFilterExpr(ds *dataset.Dataset, raw string) (chart.Filter, error) {
	parts := strings.SplitN(raw, " ", 3)
	if len(parts) != 3 {
		return chart.Filter{}, fmt.Errorf("filter must be \"column op value\"")
	}
	op, err := chart.ParseOp(parts[1])
	if err != nil {
		return chart.Filter{}, err
	}

	column := parts[0]
	value := strings.TrimSpace(parts[2])

	numeric := false
	if col, ok := ds.Column(column); ok {
		numeric = col.Type == dataset.ColNumber
	}

	var v any = value
	if op == chart.OpInSet {
		var set []any
		for _, item := range strings.Split(value, ",") {
			set = append(set, coerceFilterScalar(strings.TrimSpace(item), numeric))
		}
		v = set
	} else {
		v = coerceFilterScalar(value, numeric)
	}
	return chart.Filter{Column: column, Op: op, Value: v}, nil
}

func coerceFilterScalar(raw string, numeric bool) any {
	if numeric {
		var f float64
		if _, err := fmt.Sscanf(raw, "%g", &f); err == nil {
			return f
		}
	}
	return raw
}
