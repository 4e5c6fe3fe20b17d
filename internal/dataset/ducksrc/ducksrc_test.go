package ducksrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		dbType string
		want   dataset.ColType
	}{
		{dbType: "BIGINT", want: dataset.ColNumber},
		{dbType: "DOUBLE", want: dataset.ColNumber},
		{dbType: "DECIMAL(18,3)", want: dataset.ColNumber},
		{dbType: "BOOLEAN", want: dataset.ColBool},
		{dbType: "TIMESTAMP", want: dataset.ColTime},
		{dbType: "DATE", want: dataset.ColTime},
		{dbType: "VARCHAR", want: dataset.ColString},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.want, mapType(tt.dbType))
		})
	}
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'plain.csv'", quoteLiteral("plain.csv"))
	assert.Equal(t, "'it''s.csv'", quoteLiteral("it's.csv"))
}

func TestToValueNull(t *testing.T) {
	// NULL cells become empty string cells regardless of column type.
	assert.Equal(t, dataset.String(""), toValue(dataset.ColNumber, nil))
}

func TestLoadCSV(t *testing.T) {
	if testing.Short() {
		t.Skip("duckdb load in short mode")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	content := "region,sales\nNA,10\nEU,20\nNA,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := New()
	require.NoError(t, src.Connect(context.Background()))
	t.Cleanup(func() { _ = src.Close() })

	ds, err := src.LoadCSV(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 3, ds.RowCount())
	col, ok := ds.Column("sales")
	require.True(t, ok)
	assert.Equal(t, dataset.ColNumber, col.Type)
	assert.Equal(t, dataset.String("NA"), ds.Rows[0][0])
	assert.Equal(t, dataset.Number(10), ds.Rows[0][1])
}

func TestLoadCSVMissingFile(t *testing.T) {
	if testing.Short() {
		t.Skip("duckdb load in short mode")
	}

	src := New()
	require.NoError(t, src.Connect(context.Background()))
	t.Cleanup(func() { _ = src.Close() })

	_, err := src.LoadCSV(context.Background(), filepath.Join(t.TempDir(), "ghost.csv"))
	require.Error(t, err)

	var pe *dataset.ParseError
	require.ErrorAs(t, err, &pe)
}
