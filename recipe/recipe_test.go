package recipe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			Title:        "Kung Pao Chicken (Page 7)",
			Source:       "https://thewoksoflife.com",
			Servings:     "4",
			Ingredients:  []string{"1 lb chicken thighs", "2 tbsp soy sauce", "1/2 cup peanuts"},
			Instructions: []string{"Heat the wok until smoking.", "Add the chicken and stir-fry."},
			Tags:         []string{"chinese", "quick"},
			Description:  "A takeout classic.",
		},
		{
			Title:        "Bread: the basics",
			Servings:     "6 to 8",
			Ingredients:  []string{"500 g flour", "10 g salt"},
			Instructions: []string{"Mix.\nThen knead"},
			Notes:        "Keeps for a week.\nFreezes well.",
		},
		{
			Title:       "yes",
			Servings:    "012",
			Ingredients: []string{"- dash of salt", "# not a comment"},
			Page:        3,
			Confidence:  0.8,
			SourceFile:  "scan.pdf",
			Nutrition:   map[string]string{"calories": "250", "protein": "12 g"},
		},
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	for _, want := range sampleRecords() {
		t.Run(want.Title, func(t *testing.T) {
			data, err := Encode(want)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s\n%s", diff, data)
			}
		})
	}
}

func TestEncodeServingsType(t *testing.T) {
	data, err := Encode(Record{Title: "A", Servings: "4"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "servings: 4\n")

	data, err = Encode(Record{Title: "A", Servings: "012"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `servings: "012"`)

	data, err = Encode(Record{Title: "A", Servings: "4-6"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "servings: 4-6\n")
}

func TestEncodeSchemaOrder(t *testing.T) {
	data, err := Encode(Record{Title: "T", Source: "S", Servings: "2", Ingredients: []string{"x"}, Notes: "n"})
	require.NoError(t, err)
	s := string(data)
	order := []string{"title:", "source:", "servings:", "ingredients:", "instructions:", "notes:", "tags:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		require.Greater(t, idx, last, "key %s out of order in\n%s", key, s)
		last = idx
	}
}

func TestDecodeAppExportShape(t *testing.T) {
	doc := `
name: Mapo Tofu
source_url: https://example.com/mapo-tofu?utm_source=x
servings: 3
directions:
  - Brown the pork.
  - ""
  - Add tofu.
ingredients: |
  1 block tofu
  4 oz ground pork
nutrition: "Calories: 320, Fat: 18 g\nProtein: 20"
tags: [sichuan]
keywords: Spicy, sichuan
cook_count: 2
on_favorites: yes
`
	r, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Mapo Tofu", r.Title)
	assert.Equal(t, "https://example.com/mapo-tofu?utm_source=x", r.Source)
	assert.Equal(t, "3", r.Servings)
	assert.Equal(t, []string{"Brown the pork.", "Add tofu."}, r.Instructions)
	assert.Equal(t, []string{"1 block tofu", "4 oz ground pork"}, r.Ingredients)
	assert.Equal(t, map[string]string{"calories": "320", "fat": "18 g", "protein": "20"}, r.Nutrition)
	assert.Equal(t, []string{"sichuan", "Spicy"}, r.Tags)
	assert.Equal(t, 2, r.CookCount)
}

func TestDecodeListItemsAsWritten(t *testing.T) {
	doc := `
name: Dumplings
ingredients:
  - "Filling:"
  - 1 lb pork
  - ""
  - "  2 cups flour"
directions:
  - "  Mix the filling."
  - "   "
  - Fold.
`
	r, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Filling:", "1 lb pork", "", "  2 cups flour"}, r.Ingredients)
	assert.Equal(t, []string{"  Mix the filling.", "Fold."}, r.Instructions)
	assert.NoError(t, r.Validate())
}

func TestDecodeTitleBeatsName(t *testing.T) {
	r, err := Decode([]byte("title: Real\nname: Alias\n"))
	require.NoError(t, err)
	assert.Equal(t, "Real", r.Title)
}

func TestDecodeAll(t *testing.T) {
	data, err := EncodeAll(sampleRecords()[:2])
	require.NoError(t, err)
	data = append(data, []byte("---\ntitle: Third\ningredients: [egg]\n---\n")...)

	records, err := DecodeAll(data)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Third", records[2].Title)

	_, err = DecodeAll([]byte("just a string"))
	assert.Error(t, err)

	_, err = Decode([]byte("- title: a\n- title: b\n"))
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(Columns, ","), header)
	assert.Len(t, Columns, 25)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range sampleRecords() {
		assert.Equal(t, want.Title, got[i].Title)
		assert.Equal(t, want.Servings, got[i].Servings)
		assert.Equal(t, want.Ingredients, got[i].Ingredients)
	}
	assert.Equal(t, []string{"chinese", "quick"}, got[0].Tags)
	assert.Equal(t, "250", got[2].Nutrition["calories"])
}

func TestReadCSVAliases(t *testing.T) {
	in := "\ufeffRecipe Name,URL,Ingredient List,Method,Rating Source,Carbs\n" +
		"Pad Thai,https://example.com/pad-thai,\"rice noodles\neggs\",Soak noodles.,5,40\n" +
		",,,,,\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, "Pad Thai", r.Title)
	assert.Equal(t, "https://example.com/pad-thai", r.Source)
	assert.Equal(t, []string{"rice noodles", "eggs"}, r.Ingredients)
	assert.Equal(t, []string{"Soak noodles."}, r.Instructions)
	assert.Equal(t, "40", r.Nutrition["carbohydrate"])
	assert.Empty(t, r.Rating, "unmapped column must be dropped")

	_, ok := HeaderField("Rating Source")
	assert.False(t, ok)
	name, ok := HeaderField("Prep-Time")
	assert.True(t, ok)
	assert.Equal(t, "prep_time", name)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Record{}.Validate(), ErrNoTitle)
	assert.ErrorIs(t, Record{Title: "x", Ingredients: []string{"  "}}.Validate(), ErrNoIngredients)
	assert.NoError(t, Record{Title: "x", Ingredients: []string{"egg"}}.Validate())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Kung Pao Chicken (Page 7)": "kung-pao-chicken-page-7",
		"  Mom's -- Best!! Pie ":    "mom-s-best-pie",
		"":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestDetectTags(t *testing.T) {
	tags := DetectTags("A quick Thai green curry with CHICKEN", CuisineVocabulary)
	assert.Equal(t, []string{"chicken", "thai"}, tags)

	rules := []TagRule{{Tag: "quick", Keywords: []string{"minute", "easy"}}}
	assert.Equal(t, []string{"quick"}, DetectTags("Ready in 20 minutes", rules))
	assert.Empty(t, DetectTags("", rules))
}

func TestNutritionKeysOrder(t *testing.T) {
	keys := NutritionKeys(map[string]string{"protein": "1", "zinc": "2", "calories": "3", "alpha": "4"})
	assert.Equal(t, []string{"calories", "protein", "alpha", "zinc"}, keys)
}
