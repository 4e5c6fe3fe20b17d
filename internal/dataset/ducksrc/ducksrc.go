// Package ducksrc loads CSV files through an in-memory DuckDB instance.
// DuckDB's read_csv_auto handles large files and quoting corner cases the
// in-process parser is slower on; the result is materialized into the same
// dataset.Dataset the rest of the system consumes.
package ducksrc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// Source is a lazily connected DuckDB handle.
type Source struct {
	db *sql.DB
}

// New creates an unconnected Source.
func New() *Source {
	return &Source{}
}

// Connect opens an in-memory DuckDB database.
func (s *Source) Connect(ctx context.Context) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}
	s.db = db
	return nil
}

// Close releases the database handle.
func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadCSV reads the CSV at path into a Dataset. Column types come from
// DuckDB's own inference, mapped onto the dataset type set.
func (s *Source) LoadCSV(ctx context.Context, path string) (*dataset.Dataset, error) {
	if s.db == nil {
		return nil, fmt.Errorf("duckdb source not connected")
	}

	// read_csv_auto takes the path as a literal, not a placeholder.
	rel := fmt.Sprintf("read_csv_auto(%s, header=true)", quoteLiteral(path))

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+rel)
	if err != nil {
		return nil, &dataset.ParseError{Path: path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	cols := make([]dataset.Column, len(types))
	for i, ct := range types {
		cols[i] = dataset.Column{Name: ct.Name(), Type: mapType(ct.DatabaseTypeName())}
	}

	ds := &dataset.Dataset{Columns: cols}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]dataset.Value, len(cols))
		for i, cell := range scan {
			row[i] = toValue(cols[i].Type, *(cell.(*any)))
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &dataset.ParseError{Path: path, Err: err}
	}
	return ds, nil
}

// mapType folds DuckDB's type zoo onto the dataset type set.
func mapType(dbType string) dataset.ColType {
	switch t := strings.ToUpper(dbType); {
	case strings.Contains(t, "INT"),
		strings.Contains(t, "DOUBLE"),
		strings.Contains(t, "FLOAT"),
		strings.Contains(t, "DECIMAL"),
		strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "HUGEINT"):
		return dataset.ColNumber
	case t == "BOOLEAN":
		return dataset.ColBool
	case strings.Contains(t, "TIMESTAMP"), t == "DATE":
		return dataset.ColTime
	default:
		return dataset.ColString
	}
}

// toValue converts a scanned DuckDB cell into a typed Value. NULLs become
// empty string cells, mirroring how the in-process loader treats gaps.
func toValue(t dataset.ColType, cell any) dataset.Value {
	if cell == nil {
		return dataset.String("")
	}
	switch t {
	case dataset.ColNumber:
		switch n := cell.(type) {
		case float64:
			return dataset.Number(n)
		case float32:
			return dataset.Number(float64(n))
		case int64:
			return dataset.Number(float64(n))
		case int32:
			return dataset.Number(float64(n))
		case int:
			return dataset.Number(float64(n))
		}
	case dataset.ColBool:
		if b, ok := cell.(bool); ok {
			return dataset.Boolean(b)
		}
	case dataset.ColTime:
		if ts, ok := cell.(time.Time); ok {
			return dataset.Timestamp(ts)
		}
	}
	return dataset.String(fmt.Sprintf("%v", cell))
}

// quoteLiteral wraps s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
