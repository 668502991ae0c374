package appexport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/spreadsheet"
)

func TestMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"PT1H30M", 90, true},
		{"PT45M", 45, true},
		{"PT2H", 120, true},
		{"1 hour 15 minutes", 75, true},
		{"1.5 hours", 90, true},
		{"1 1/2 hours", 90, true},
		{"3/4 hour", 45, true},
		{"2 hours 30 MIN", 150, true},
		{"PT0.5H", 30, true},
		{"", 0, false},
		{"soon", 0, false},
	}
	for _, c := range cases {
		got, ok := Minutes(c.in)
		assert.Equal(t, c.want, got, c.in)
		assert.Equal(t, c.ok, ok, c.in)
	}
}

func TestNutrient(t *testing.T) {
	n := map[string]string{"carbohydrate": "32 g", "calories": "abc"}
	v, ok := Nutrient(n, "carbs", "carbohydrate")
	assert.True(t, ok)
	assert.Equal(t, 32.0, v)
	_, ok = Nutrient(n, "calories")
	assert.False(t, ok)
}

func TestIngredientCountSkipsHeadings(t *testing.T) {
	assert.Equal(t, 2, IngredientCount([]string{"For the sauce:", "1 tbsp soy", "", "2 eggs"}))
}

func TestFlatten(t *testing.T) {
	r := recipe.Record{
		Title:        "Stew",
		Source:       "https://example.com/stew/?utm_source=x",
		Servings:     "4",
		Ingredients:  []string{"Main:", "beef", "carrots"},
		Instructions: []string{"Brown.", "", "Simmer."},
		Tags:         []string{"dinner", "winter"},
		PrepTime:     "PT15M",
		CookTime:     "PT1H",
		CookCount:    2,
		Nutrition:    map[string]string{"Calories": "420", "Saturated Fat": "3.5 g", "fat": "12 g", "sodium": "800 mg"},
	}
	row := Flatten(r)
	v := row.Values
	assert.Equal(t, "https://example.com/stew", v["source"])
	assert.Equal(t, r.Source, v["source_url_original"])
	assert.Equal(t, "Main:\nbeef\ncarrots", v["ingredients"])
	assert.Equal(t, "dinner, winter", v["tags"])
	assert.Equal(t, "15", v["prep_time_min"])
	assert.Equal(t, "60", v["cook_time_min"])
	assert.Equal(t, "75", v["total_time_min"])
	assert.Equal(t, "420", v["calories"])
	assert.Equal(t, "12", v["fat_g"])
	assert.Equal(t, "3.5", v["saturated_fat_g"])
	assert.Equal(t, "800", v["sodium_mg"])
	assert.Empty(t, v["protein_g"])
	assert.Equal(t, "2", v["ingredient_count"])
	assert.Equal(t, "2", v["step_count"])
	assert.Equal(t, "2", v["cook_count"])
	assert.True(t, row.Tagged)
	assert.True(t, row.Cooked)
}

func TestFlattenTotalTimeFallback(t *testing.T) {
	v := Flatten(recipe.Record{Title: "x", TotalTime: "PT20M"}).Values
	assert.Equal(t, "20", v["total_time_min"])
	assert.Empty(t, v["prep_time_min"])

	v = Flatten(recipe.Record{Title: "x", CookTime: "PT10M", TotalTime: "PT90M"}).Values
	assert.Equal(t, "10", v["total_time_min"])
}

func TestBuildOneRowPerRecordSortedByTitle(t *testing.T) {
	recs := []recipe.Record{{Title: "banana bread"}, {Title: "Apple Pie"}, {Title: "apple pie"}, {Title: ""}}
	rows := Build(recs)
	require.Len(t, rows, len(recs))
	var titles []string
	for _, r := range rows {
		titles = append(titles, r.Values["title"])
	}
	assert.Equal(t, []string{"", "Apple Pie", "apple pie", "banana bread"}, titles)

	table := Table(rows, Columns)
	assert.Len(t, table.Rows, len(recs))
	assert.Equal(t, Columns[:7], []string{"title", "source", "servings", "ingredients", "instructions", "notes", "tags"})
}

func TestSummarize(t *testing.T) {
	rows := Build([]recipe.Record{
		{Title: "a", PrepTime: "PT10M", Nutrition: map[string]string{"calories": "200"}, Tags: []string{"x"}},
		{Title: "b", PrepTime: "PT20M", CookTime: "PT30M", CookCount: 1},
		{Title: "c"},
	})
	s := Summarize(rows)
	assert.Equal(t, 3, s.Recipes)
	assert.InDelta(t, 15.0, s.AvgPrep, 1e-9)
	assert.Equal(t, 2, s.PrepCount)
	assert.InDelta(t, 30.0, s.AvgCook, 1e-9)
	assert.InDelta(t, 200.0, s.AvgCalories, 1e-9)
	assert.Equal(t, 1, s.WithTags)
	assert.Equal(t, 1, s.Cooked)

	empty := Summarize(nil).Table()
	assert.Equal(t, [][]string{{"recipes", "0"}, {"recipes_with_tags", "0"}, {"recipes_cooked", "0"}}, empty.Rows)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	rows := Build([]recipe.Record{
		{Title: "Stew", Source: "https://example.com/stew?ref=1", PrepTime: "PT5M"},
		{Title: "Pie"},
	})
	files, err := Write(dir, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FullName), files.Full)

	full, err := spreadsheet.Read(files.Full)
	require.NoError(t, err)
	assert.Equal(t, Columns, full.Header)
	require.Len(t, full.Rows, 2)
	assert.Equal(t, "Pie", full.Rows[0][0])

	csv, err := spreadsheet.Read(files.CSV)
	require.NoError(t, err)
	require.Len(t, csv.Rows, 2)
	assert.Equal(t, "https://example.com/stew", spreadsheet.Value(csv.Rows[1], csv.Column("source")))

	simple, err := spreadsheet.Read(files.Simple)
	require.NoError(t, err)
	assert.Equal(t, SimpleColumns, simple.Header)
}
