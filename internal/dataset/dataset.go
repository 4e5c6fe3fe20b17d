// Package dataset provides the in-memory tabular model used by the chart
// builder, plus loaders that parse uploaded CSV and Excel files into it.
package dataset

import "fmt"

// ColType is the inferred type of a column.
type ColType string

const (
	ColString ColType = "string"
	ColNumber ColType = "number"
	ColBool   ColType = "bool"
	ColTime   ColType = "time"
)

// Column describes one column of a dataset: its header name and inferred type.
type Column struct {
	Name string  `json:"name"`
	Type ColType `json:"type"`
}

// Dataset is an immutable tabular structure: an ordered list of typed
// columns and the rows beneath them. Every row has exactly one Value per
// column, in column order.
type Dataset struct {
	Columns []Column
	Rows    [][]Value
}

// Schema returns the ordered column list.
func (d *Dataset) Schema() []Column {
	return d.Columns
}

// RowCount returns the number of data rows (excluding the header).
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column's definition.
func (d *Dataset) Column(name string) (Column, bool) {
	if i := d.ColumnIndex(name); i >= 0 {
		return d.Columns[i], true
	}
	return Column{}, false
}

// Head returns up to n leading rows, for previews.
func (d *Dataset) Head(n int) [][]Value {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// validateShape checks that every row matches the column count. Loaders call
// this before handing a Dataset to callers.
func (d *Dataset) validateShape() error {
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(d.Columns))
		}
	}
	return nil
}
