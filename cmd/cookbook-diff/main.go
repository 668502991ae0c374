// Command cookbook-diff lists the local recipes that are not yet in the
// cookbook app's export, and those that already are.
package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/diff"
	"github.com/wudi/recipekit/observability"
)

func main() {
	var outDir string
	cmd, app := cliutil.NewCommand("cookbook-diff [flags] <local> <export>",
		"Compare a local recipe collection (YAML dir or URL list) with the app export (YAML dir/zip or spreadsheet)",
		cobra.ExactArgs(2), func(_ context.Context, app *cliutil.App, args []string) error {
			return run(app, app.OutputDir(outDir), args[0], args[1])
		})
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cliutil.Main(cmd, app)
}

func run(app *cliutil.App, outDir, localPath, exportPath string) error {
	local, err := diff.Load(localPath, app.Log)
	if err != nil {
		return err
	}
	export, err := diff.Load(exportPath, app.Log)
	if err != nil {
		return err
	}
	res := diff.Compare(local, export)
	paths, err := diff.Write(outDir, res)
	if err != nil {
		return err
	}

	byMatch := map[string]int{}
	for _, o := range res.Already {
		byMatch[o.By]++
	}
	app.Log.Info("comparison complete",
		observability.Int("local", len(local)),
		observability.Int("export", len(export)),
		observability.Int("missing", len(res.Missing)),
		observability.Int("already", len(res.Already)),
		observability.Int("matched_by_url", byMatch[diff.ByURL]),
		observability.Int("matched_by_title", byMatch[diff.ByTitle]),
		observability.Int("matched_fuzzy", byMatch[diff.ByFuzzy]))
	for _, sc := range diff.BySite(res.Missing) {
		app.Log.Info("missing by site", observability.String("site", sc.Site), observability.Int(observability.KeyCount, sc.Count))
	}
	for _, p := range paths {
		app.Log.Info("wrote", observability.String(observability.KeyPath, p))
	}
	return nil
}
