package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() Table {
	t := Table{Header: []string{"title", "servings", "ingredients"}}
	t.Append("Soup", "4", "stock\nsalt")
	t.Append("Salad", "2.5", "greens")
	t.Append("Toast", "012", "bread")
	return t
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, Write(path, sample()))
			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, sample().Header, got.Header)
			assert.Equal(t, sample().Rows, got.Rows)
		})
	}
}

func TestWriteXLSXSheetsAndTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	summary := Table{Header: []string{"metric", "value"}, Rows: [][]string{{"recipes", "3"}}}
	require.NoError(t, WriteXLSX(path, Sheet{Name: "Recipes", Table: sample()}, Sheet{Name: "Summary", Table: summary}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Recipes", "Summary"}, f.GetSheetList())

	typ, err := f.GetCellType("Recipes", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "numeric servings are stored as numbers")
	typ, err = f.GetCellType("Recipes", "B4")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, typ, "non-canonical numbers stay text")
}

func TestColumnAndValue(t *testing.T) {
	tbl := Table{Header: []string{" Recipe URLs ", "Source"}}
	assert.Equal(t, 0, tbl.Column("recipe urls"))
	assert.Equal(t, -1, tbl.Column("missing"))
	assert.Equal(t, "x", Value([]string{" x "}, 0))
	assert.Equal(t, "", Value([]string{"x"}, 3))
	assert.Equal(t, "", Value([]string{"x"}, -1))
}

func TestReadSkipsBlankRowsAndBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, WriteCSV(path, Table{Header: []string{"\ufeffurl"}, Rows: [][]string{{""}, {"https://a.example/x"}}}))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"url"}, got.Header)
	assert.Equal(t, [][]string{{"https://a.example/x"}}, got.Rows)

	_, err = Read("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupported)
}
