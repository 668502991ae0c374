package cliutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/recipekit/observability"
)

func newTestCommand(run RunFunc) (*cobra.Command, *App, *bytes.Buffer) {
	cmd, app := NewCommand("tool <path>", "test tool", cobra.ExactArgs(1), run)
	app.Log = observability.NopLogger{}
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetOut(&stderr)
	return cmd, app, &stderr
}

func TestRunLoadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\ndir = \"/tmp/kit-out\"\n"), 0o644))

	var got string
	cmd, app, _ := newTestCommand(func(ctx context.Context, app *App, args []string) error {
		require.NotNil(t, ctx)
		got = args[0]
		return nil
	})
	code := Run(cmd, app, []string{"--config", path, "-v", "input.pdf"})
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "input.pdf", got)
	assert.Equal(t, "/tmp/kit-out", app.OutputDir(""))
	assert.Equal(t, "elsewhere", app.OutputDir("elsewhere"))
	assert.Equal(t, "debug", app.Config.Log.Level)
}

func TestUsageErrorsExitTwo(t *testing.T) {
	cmd, app, stderr := newTestCommand(func(context.Context, *App, []string) error { return nil })
	assert.Equal(t, ExitUsage, Run(cmd, app, nil))
	assert.Contains(t, stderr.String(), "Usage:")

	cmd, app, _ = newTestCommand(func(context.Context, *App, []string) error { return nil })
	assert.Equal(t, ExitUsage, Run(cmd, app, []string{"--no-such-flag", "x"}))

	cmd, app, _ = newTestCommand(func(context.Context, *App, []string) error { return Usagef("bad page %d", 0) })
	assert.Equal(t, ExitUsage, Run(cmd, app, []string{"x"}))
}

func TestFailuresExitOne(t *testing.T) {
	cmd, app, stderr := newTestCommand(func(context.Context, *App, []string) error { return errors.New("boom") })
	assert.Equal(t, ExitFailure, Run(cmd, app, []string{"x"}))
	assert.Contains(t, stderr.String(), "tool: boom")

	cmd, app, _ = newTestCommand(func(context.Context, *App, []string) error { return nil })
	assert.Equal(t, ExitFailure, Run(cmd, app, []string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "x"}))
}

func TestOCREngineDisabledWithoutProvider(t *testing.T) {
	cmd, app, _ := newTestCommand(func(context.Context, *App, []string) error { return nil })
	require.Equal(t, ExitOK, Run(cmd, app, []string{"x"}))
	_, ok := app.OCREngine()
	assert.False(t, ok)
}
