// Command clean-urls strips tracking parameters from a spreadsheet of recipe
// URLs, removes duplicates and guesses site and recipe names.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/spreadsheet"
	"github.com/wudi/recipekit/urlclean"
)

func main() {
	var outDir string
	cmd, app := cliutil.NewCommand("clean-urls [flags] <urls.xlsx|csv>", "Clean and de-duplicate recipe URLs",
		cobra.ExactArgs(1), func(_ context.Context, app *cliutil.App, args []string) error {
			return run(app, app.OutputDir(outDir), args[0])
		})
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cliutil.Main(cmd, app)
}

func run(app *cliutil.App, outDir, input string) error {
	t, err := spreadsheet.Read(input)
	if err != nil {
		return err
	}
	entries, stats, err := urlclean.Process(t)
	if err != nil {
		return cliutil.UsageError{Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	outputs := []struct {
		stem  string
		table spreadsheet.Table
	}{
		{urlclean.FullName, urlclean.FullTable(entries)},
		{urlclean.SimpleName, urlclean.SimpleTable(entries)},
	}
	for _, out := range outputs {
		for _, ext := range []string{".xlsx", ".csv"} {
			path := filepath.Join(outDir, out.stem+ext)
			if err := spreadsheet.Write(path, out.table); err != nil {
				return err
			}
			app.Log.Info("wrote", observability.String(observability.KeyPath, path))
		}
	}
	app.Log.Info("urls cleaned",
		observability.Int("total", stats.Total),
		observability.Int("cleaned", stats.Cleaned),
		observability.Int("unchanged", stats.Unchanged),
		observability.Int("duplicates", stats.Duplicates),
		observability.Int("unique", stats.Unique),
		observability.Int("named", stats.Named))
	return nil
}
