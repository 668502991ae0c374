package scripting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/recipekit/recipe"
)

const testPlugin = `
var count = 0;
function createRecipe(r) {
	if (r.title === "Bad") {
		throw new Error("bad recipe");
	}
	if (r.title === "Nope") {
		return false;
	}
	if (r.title === "Loop") {
		while (true) {}
	}
	if (r.title === "Escape") {
		cookbook.appendFile("../outside.txt", "x");
	}
	count++;
	cookbook.appendFile("log/created.txt",
		cookbook.slug(r.title) + " " + r.ingredients.length + " " + r.tags.join("|") + " " + (r.nutrition.calories || "") + "\n");
	console.log("created", r.title, count);
}
`

func loadTestPlugin(t *testing.T) (*Plugin, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := LoadSource(context.Background(), "test.js", testPlugin, WithOutputDir(dir))
	require.NoError(t, err)
	return p, dir
}

func TestPluginCreatesRecipes(t *testing.T) {
	p, dir := loadTestPlugin(t)
	ctx := context.Background()

	require.NoError(t, p.CreateRecipe(ctx, recipe.Record{
		Title:       "Kung Pao Chicken",
		Ingredients: []string{"chicken", "peanuts"},
		Tags:        []string{"chinese", "quick"},
		Nutrition:   map[string]string{"calories": "400"},
	}))
	require.NoError(t, p.CreateRecipe(ctx, recipe.Record{Title: "Toast"}))

	data, err := os.ReadFile(filepath.Join(dir, "log", "created.txt"))
	require.NoError(t, err)
	assert.Equal(t, "kung-pao-chicken 2 chinese|quick 400\ntoast 0  \n", string(data))
	assert.Equal(t, "test.js", p.Name())
}

func TestPluginFailures(t *testing.T) {
	p, dir := loadTestPlugin(t)
	ctx := context.Background()

	err := p.CreateRecipe(ctx, recipe.Record{Title: "Bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad recipe")

	assert.ErrorIs(t, p.CreateRecipe(ctx, recipe.Record{Title: "Nope"}), ErrRejected)

	err = p.CreateRecipe(ctx, recipe.Record{Title: "Escape"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the output directory")
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "outside.txt"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	tctx, cancel := context.WithTimeout(ctx, 25*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.CreateRecipe(tctx, recipe.Record{Title: "Loop"}), context.DeadlineExceeded)

	require.NoError(t, p.CreateRecipe(ctx, recipe.Record{Title: "After"}), "plugin recovers after an interrupt")
}

func TestLoadRequiresEntryPoint(t *testing.T) {
	_, err := LoadSource(context.Background(), "empty.js", "var x = 1;")
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = LoadSource(context.Background(), "broken.js", "function (")
	assert.Error(t, err)
}

func TestLoadFromFileWithoutOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.js")
	require.NoError(t, os.WriteFile(path, []byte(`function createRecipe(r) { cookbook.appendFile("a.txt", r.title); }`), 0o644))
	p, err := Load(context.Background(), path)
	require.NoError(t, err)
	err = p.CreateRecipe(context.Background(), recipe.Record{Title: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory")
}
