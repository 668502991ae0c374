package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/recipekit/recipe"
)

func records() []recipe.Record {
	return []recipe.Record{
		{Title: "Lo Mein (Page 7)", Servings: "4", Ingredients: []string{"noodles"}, Instructions: []string{"Boil.", "Toss."}, SourceFile: "a.pdf", Page: 7},
		{Title: "Lo Mein (Page 7)", Ingredients: []string{"more noodles"}},
		{Title: "!!!", Ingredients: []string{"salt"}},
	}
}

func TestSlugger(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "lo-mein", s.Next("Lo Mein", 0))
	assert.Equal(t, "lo-mein-2", s.Next("LO MEIN", 1))
	assert.Equal(t, "recipe-3", s.Next("???", 2))
}

func TestSluggerSuffixCollision(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "soup", s.Next("Soup", 0))
	assert.Equal(t, "soup-2", s.Next("Soup", 1))
	assert.Equal(t, "soup-2-2", s.Next("Soup 2", 2))
	assert.Equal(t, "soup-3", s.Next("soup", 3))
}

func TestWriteYAMLFilesKeepsEveryRecord(t *testing.T) {
	dir := t.TempDir()
	recs := []recipe.Record{
		{Title: "Soup", Ingredients: []string{"water"}},
		{Title: "Soup", Ingredients: []string{"stock"}},
		{Title: "Soup 2", Ingredients: []string{"broth"}},
	}
	paths, err := WriteYAMLFiles(dir, recs)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	seen := make(map[string]bool)
	for i, p := range paths {
		require.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
		got, err := recipe.ReadFile(p)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, recs[i].Ingredients, got[0].Ingredients)
	}
}

func TestWriteYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteYAMLFiles(dir, records())
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "lo-mein-page-7.yml"), paths[0])
	assert.Equal(t, filepath.Join(dir, "lo-mein-page-7-2.yml"), paths[1])
	assert.Equal(t, filepath.Join(dir, "recipe-3.yml"), paths[2])

	got, err := recipe.ReadFile(paths[0])
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lo Mein (Page 7)", got[0].Title)
	assert.Equal(t, []string{"Boil.", "Toss."}, got[0].Instructions)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, records()[:1]))
	want := "Lo Mein (Page 7)\n----------------\n" +
		"Ingredients:\nnoodles\n\n" +
		"Directions:\nBoil.\nToss.\n\n" +
		"Source File: a.pdf (page 7)\n" +
		"-------------------------\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	review := []recipe.Record{{Title: "Blurry", SourceFile: "scan.pdf", Page: 2, Confidence: 0.3}}
	b, err := WriteAll(dir, records(), review, Options{Combined: true, Text: true})
	require.NoError(t, err)
	assert.Empty(t, b.Files)

	combined, err := recipe.ReadFile(b.YAML)
	require.NoError(t, err)
	assert.Len(t, combined, 3)

	f, err := os.Open(b.CSV)
	require.NoError(t, err)
	defer f.Close()
	got, err := recipe.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	data, err := os.ReadFile(b.Review)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ReviewColumns, rows[0])
	assert.Equal(t, []string{"scan.pdf", "2", "0.30"}, rows[1][len(rows[1])-3:])

	none, err := WriteAll(t.TempDir(), records(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, none.Review)
	assert.Empty(t, none.YAML)
}
