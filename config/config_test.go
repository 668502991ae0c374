package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipekit.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[cookbook]
start_page = 2
column_split = 300.5
force_ocr = true

[browser]
extension_wait = "5s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Cookbook.StartPage)
	assert.Equal(t, 300.5, cfg.Cookbook.ColumnSplit)
	assert.True(t, cfg.Cookbook.ForceOCR)
	assert.Equal(t, 5*time.Second, cfg.Browser.ExtensionWait.Duration)

	// untouched keys keep their defaults
	assert.Equal(t, 2, cfg.Cookbook.PageStride)
	assert.Equal(t, 0.25, cfg.Cookbook.GarbleThreshold)
	assert.Equal(t, 2*time.Second, cfg.Browser.SaveWait.Duration)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeConfig(t, "[anylist]\nemail = \"file@example.com\"\n")
	t.Setenv("RECIPEKIT_ANYLIST_EMAIL", "env@example.com")
	t.Setenv("RECIPEKIT_OCR_LANGUAGES", "eng,deu")
	t.Setenv("RECIPEKIT_IMPORTER_TIMEOUT", "90s")
	t.Setenv("RECIPEKIT_OCR_SCALE", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.AnyList.Email)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Languages)
	assert.Equal(t, 90*time.Second, cfg.Importer.Timeout.Duration)
	assert.Equal(t, 2.0, cfg.OCR.Scale)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Cookbook, cfg.Cookbook)
	assert.Equal(t, 1.5, cfg.OCR.Scale)
}
