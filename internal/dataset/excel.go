package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// LoadExcel parses the first sheet of the xlsx workbook at path into a
// Dataset. The first row is the required header.
func LoadExcel(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return FromExcel(f, filepath.Base(path))
}

// FromExcel parses xlsx content from r into a Dataset.
func FromExcel(r io.Reader, name string) (*Dataset, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("workbook contains no sheets")}
	}

	// Only the first sheet is read; the original upload flow never exposes
	// sheet selection.
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Path: name, Err: ErrEmptyFile}
	}

	header := rows[0]
	if len(header) == 0 {
		return nil, &ParseError{Path: name, Err: ErrNoColumns}
	}

	// excelize trims trailing empty cells per row; pad to header width so
	// every row converts cleanly.
	raw := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		} else if len(row) > len(header) {
			row = row[:len(header)]
		}
		raw = append(raw, row)
	}

	cols := inferColumns(header, raw)
	ds := &Dataset{
		Columns: cols,
		Rows:    convertRows(cols, raw),
	}
	if err := ds.validateShape(); err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	return ds, nil
}

// Load parses path as CSV or Excel based on its extension.
func Load(path string, opts CSVOptions) (*Dataset, error) {
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		return LoadCSV(path, opts)
	case ".xlsx", ".xlsm":
		return LoadExcel(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .csv or .xlsx)", ext)
	}
}
