package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCSV_InferredTypes(t *testing.T) {
	input := "region,sales,active,day\nNA,10,true,2024-01-01\nEU,20,false,2024-01-02\nNA,5,true,2024-01-03\n"

	ds, err := FromCSV(strings.NewReader(input), "sales.csv", CSVOptions{})
	require.NoError(t, err)

	require.Equal(t, []Column{
		{Name: "region", Type: ColString},
		{Name: "sales", Type: ColNumber},
		{Name: "active", Type: ColBool},
		{Name: "day", Type: ColTime},
	}, ds.Schema())

	require.Equal(t, 3, ds.RowCount())
	assert.Equal(t, String("NA"), ds.Rows[0][0])
	assert.Equal(t, Number(10), ds.Rows[0][1])
	assert.Equal(t, Boolean(true), ds.Rows[0][2])
}

func TestFromCSV_BOMStripped(t *testing.T) {
	input := "\xef\xbb\xbfname,n\na,1\n"

	ds, err := FromCSV(strings.NewReader(input), "bom.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "name", ds.Columns[0].Name)
}

func TestFromCSV_Latin1(t *testing.T) {
	// "Köln" in ISO 8859-1: K=0x4b, ö=0xf6.
	input := "city,n\nK\xf6ln,1\n"

	ds, err := FromCSV(strings.NewReader(input), "cities.csv", CSVOptions{Encoding: "latin-1"})
	require.NoError(t, err)
	assert.Equal(t, String("Köln"), ds.Rows[0][0])
}

func TestFromCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRow int
	}{
		{name: "empty file", input: ""},
		{name: "ragged row", input: "a,b\n1,2\n3\n", wantRow: 3},
		{name: "bare quote", input: "a,b\n\"x,2\n", wantRow: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCSV(strings.NewReader(tt.input), "bad.csv", CSVOptions{})
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, "bad.csv", pe.Path)
			if tt.wantRow > 0 {
				assert.Equal(t, tt.wantRow, pe.Row)
			}
		})
	}
}

func TestFromCSV_EmptyCellsKeepColumnString(t *testing.T) {
	input := "name,n\na,1\nb,\n"

	ds, err := FromCSV(strings.NewReader(input), "gaps.csv", CSVOptions{})
	require.NoError(t, err)

	// A blank cell must not let the column pretend to be numeric.
	col, ok := ds.Column("n")
	require.True(t, ok)
	assert.Equal(t, ColString, col.Type)
}

func TestFromCSV_SemicolonDelimiter(t *testing.T) {
	input := "a;b\n1;2\n"

	ds, err := FromCSV(strings.NewReader(input), "semi.csv", CSVOptions{Comma: ';'})
	require.NoError(t, err)
	require.Equal(t, 2, len(ds.Columns))
	assert.Equal(t, Number(2), ds.Rows[0][1])
}
