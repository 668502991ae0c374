package urlclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/recipekit/spreadsheet"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"https://example.com/recipe?utm_source=x&ref=y":       "https://example.com/recipe",
		"https://example.com/recipe/":                         "https://example.com/recipe",
		"https://example.com/":                                "https://example.com/",
		"https://example.com//?utm_source=x":                  "https://example.com",
		"https://example.com/a/b#comments":                    "https://example.com/a/b",
		"https://www.site.com/recipes/123-soup/?fbclid=abc#x": "https://www.site.com/recipes/123-soup",
		"https://example.com/path;jsessionid=1?q=2":           "https://example.com/path",
		"  https://example.com/x?  ":                          "https://example.com/x",
	}
	for in, want := range cases {
		assert.Equal(t, want, Clean(in), in)
	}
}

func TestSiteName(t *testing.T) {
	cases := map[string]string{
		"https://www.seriouseats.com/x": "Serious Eats",
		"https://food52.com/recipes/1":  "Food52",
		"https://myfoodblog.net/soup":   "My Food Blog",
		"https://thekitchenlab.io/a":    "The Kitchen Lab",
		"https://cook4home.com/a":       "Cook 4 Home",
		"https://blog.example.com/a":    "Blog",
		"example.org/recipes/pie":       "Example",
		"":                              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SiteName(in), in)
	}
}

func TestRecipeName(t *testing.T) {
	cases := map[string]string{
		"https://example.com/recipes/12345-garlic-butter-noodles": "Garlic Butter Noodles",
		"https://example.com/recipes/mapo_tofu-2020":              "Mapo Tofu",
		"https://example.com/moms-s-apple-pie.html":               "Moms's Apple Pie",
		"https://example.com/mom-s-meatloaf/":                     "Mom's Meatloaf",
		"https://example.com/":                                    "",
		"https://example.com/2021/05/":                            "",
		"example.com/recipes/chili":                               "Chili",
	}
	for in, want := range cases {
		assert.Equal(t, want, RecipeName(in), in)
	}
}

func TestProcess(t *testing.T) {
	in := spreadsheet.Table{Header: []string{"Source", "Recipe URLs"}}
	in.Append("Pinterest", "https://www.budgetbytes.com/one-pot-chili/?utm_source=pin")
	in.Append("Email", "https://www.budgetbytes.com/one-pot-chili/")
	in.Append("Notes", "https://smittenkitchen.com/2020/01/best-pancakes/")
	in.Append("Blank", "")

	entries, st, err := Process(in)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{
		Source:   "Pinterest",
		Original: "https://www.budgetbytes.com/one-pot-chili/?utm_source=pin",
		Cleaned:  "https://www.budgetbytes.com/one-pot-chili",
		Site:     "Budget Bytes",
		Name:     "One Pot Chili",
	}, entries[0])
	assert.Equal(t, "Best Pancakes", entries[1].Name)
	assert.Equal(t, Stats{Total: 3, Cleaned: 3, Unchanged: 0, Duplicates: 1, Unique: 2, Named: 3}, st)

	full := FullTable(entries)
	assert.Equal(t, "cleaned_url", full.Header[2])
	simple := SimpleTable(entries)
	assert.Equal(t, []string{"https://smittenkitchen.com/2020/01/best-pancakes", "Smitten Kitchen", "Best Pancakes"}, simple.Rows[1])

	_, _, err = Process(spreadsheet.Table{Header: []string{"title"}})
	assert.ErrorIs(t, err, ErrNoURLColumn)
}
