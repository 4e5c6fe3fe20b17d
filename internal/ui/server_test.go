package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/testutil"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

func TestLoadableFile(t *testing.T) {
	assert.True(t, loadableFile("sales.csv"))
	assert.True(t, loadableFile("sales.xlsx"))
	assert.True(t, loadableFile("macro.xlsm"))
	assert.False(t, loadableFile("notes.txt"))
	assert.False(t, loadableFile("chart_configs.db"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("region,sales\nNA,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("a,b\n1,2,3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignore me"), 0o644))

	reg := registry.New()
	srv := NewServer(Config{
		Registry:    reg,
		DatasetsDir: dir,
		Load: func(_ context.Context, path string) (*dataset.Dataset, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer func() { _ = f.Close() }()
			return dataset.FromCSV(f, filepath.Base(path), dataset.CSVOptions{})
		},
		Logger: testutil.NewTestLogger(t),
	})

	require.NoError(t, srv.LoadDir(context.Background()))

	// The malformed file is skipped, the text file ignored.
	require.Equal(t, 1, reg.Len())
	entry, ok := reg.Latest()
	require.True(t, ok)
	assert.Equal(t, "sales.csv", entry.Name)
	assert.True(t, strings.HasSuffix(entry.Name, ".csv"))
}
