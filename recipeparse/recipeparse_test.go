package recipeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextWithHeaders(t *testing.T) {
	rec := ParseText(`Thai Basil Chicken
A quick weeknight stir fry.
Serves 4
Ingredients:
- 1 lb chicken thighs
- 2 tbsp fish sauce
• 1 cup basil
Directions:
1. Heat the wok until smoking.
2. Add chicken and cook through.
Notes: Use holy basil if you can find it.
`)
	assert.Equal(t, "Thai Basil Chicken", rec.Title)
	assert.Equal(t, "A quick weeknight stir fry.", rec.Description)
	assert.Equal(t, "4", rec.Servings)
	assert.Equal(t, []string{"1 lb chicken thighs", "2 tbsp fish sauce", "1 cup basil"}, rec.Ingredients)
	assert.Equal(t, []string{"Heat the wok until smoking.", "Add chicken and cook through."}, rec.Instructions)
	assert.Equal(t, "Use holy basil if you can find it.", rec.Notes)
	assert.Equal(t, []string{"chicken", "thai"}, rec.Tags)
	require.NoError(t, rec.Validate())
}

func TestParseTextInlineHeader(t *testing.T) {
	rec := ParseText("Pancakes\nIngredients: 2 eggs\n1 cup flour\nInstructions: Whisk everything.")
	assert.Equal(t, []string{"2 eggs", "1 cup flour"}, rec.Ingredients)
	assert.Equal(t, []string{"Whisk everything."}, rec.Instructions)
}

func TestParseTextFallbacks(t *testing.T) {
	rec := ParseText("Grandma's Stew\nline one\nline two\nline three\nline four\nline five")
	assert.Equal(t, "Grandma's Stew", rec.Title)
	assert.Equal(t, "line one line two", rec.Description)
	assert.Equal(t, []string{"line one", "line two", "line three", "line four"}, rec.Ingredients)
	assert.Equal(t, []string{"stew"}, rec.Tags)

	empty := ParseText("  \n\n")
	assert.Equal(t, UntitledRecipe, empty.Title)
	assert.Empty(t, empty.Ingredients)

	headed := ParseText("Ingredients\n1 egg")
	assert.Equal(t, UntitledRecipe, headed.Title)
	assert.Equal(t, []string{"1 egg"}, headed.Ingredients)
}

func TestParseMarkdown(t *testing.T) {
	src := []byte(`# Italian Pasta Bake

Comfort food for a crowd.

Serves 6

## Ingredients

- 1 lb pasta
- 2 cups *marinara*
  - homemade is best
- 1 cup mozzarella

## Method

1. Preheat the oven.
2. Combine everything
   in a dish.

## Notes

Freezes well.

## Tags

dinner, family
`)
	rec := ParseMarkdown(src)
	assert.Equal(t, "Italian Pasta Bake", rec.Title)
	assert.Equal(t, "Comfort food for a crowd.", rec.Description)
	assert.Equal(t, "6", rec.Servings)
	assert.Equal(t, []string{"1 lb pasta", "2 cups marinara", "homemade is best", "1 cup mozzarella"}, rec.Ingredients)
	assert.Equal(t, []string{"Preheat the oven.", "Combine everything in a dish."}, rec.Instructions)
	assert.Equal(t, "Freezes well.", rec.Notes)
	assert.Equal(t, []string{"dinner", "family", "bake", "italian", "pasta"}, rec.Tags)
}

func TestParseMarkdownIgnoresUnknownSections(t *testing.T) {
	rec := ParseMarkdown([]byte("Intro paragraph.\n\n## Story\n\nLong story.\n\n## Ingredients\n\n* salt\n"))
	assert.Equal(t, UntitledRecipe, rec.Title)
	assert.Equal(t, "Intro paragraph.", rec.Description)
	assert.Equal(t, []string{"salt"}, rec.Ingredients)
}
