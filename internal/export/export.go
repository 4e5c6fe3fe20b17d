// Package export writes resolved chart data and configurations to portable
// formats: CSV and Excel for data, JSON and YAML for configurations.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// WriteCSV writes ds to w as comma-delimited CSV with a header row. Rows
// appear in dataset order, so output is deterministic.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, v := range row {
			record[i] = v.Render()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExcelSheetName is the sheet data exports are written to.
const ExcelSheetName = "data"

// WriteExcel writes ds to w as an xlsx workbook with a single data sheet.
func WriteExcel(w io.Writer, ds *dataset.Dataset) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	// NewFile starts with "Sheet1"; rename rather than juggling indexes.
	if err := wb.SetSheetName("Sheet1", ExcelSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c.Name
	}
	if err := setRow(wb, 1, header); err != nil {
		return err
	}

	for r, row := range ds.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v.Native()
		}
		if err := setRow(wb, r+2, cells); err != nil {
			return err
		}
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(wb *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := wb.SetSheetRow(ExcelSheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// Materialize turns a regenerated Spec back into a tabular dataset: the x
// column followed by one numeric column per series. This is what the data
// export endpoints write after filters and aggregation have applied.
func Materialize(spec *chart.Spec) *dataset.Dataset {
	xType := dataset.ColString
	if len(spec.X) > 0 {
		xType = spec.X[0].Kind
	}

	cols := make([]dataset.Column, 0, 1+len(spec.Series))
	cols = append(cols, dataset.Column{Name: spec.XLabel, Type: xType})
	for _, s := range spec.Series {
		cols = append(cols, dataset.Column{Name: s.Label, Type: dataset.ColNumber})
	}

	rows := make([][]dataset.Value, len(spec.X))
	for i, x := range spec.X {
		row := make([]dataset.Value, 0, len(cols))
		row = append(row, x)
		for _, s := range spec.Series {
			row = append(row, dataset.Number(s.Values[i]))
		}
		rows[i] = row
	}

	return &dataset.Dataset{Columns: cols, Rows: rows}
}
