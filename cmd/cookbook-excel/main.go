// Command cookbook-excel flattens a directory or zip of recipe YAML into
// review spreadsheets with derived time and nutrition columns.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/appexport"
	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/corpus"
	"github.com/wudi/recipekit/observability"
)

func main() {
	var outDir string
	cmd, app := cliutil.NewCommand("cookbook-excel [flags] <dir|zip>", "Export recipe YAML to Excel and CSV",
		cobra.ExactArgs(1), func(_ context.Context, app *cliutil.App, args []string) error {
			return run(app, app.OutputDir(outDir), args[0])
		})
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cliutil.Main(cmd, app)
}

func run(app *cliutil.App, outDir, input string) error {
	c, err := corpus.Load(input)
	if err != nil {
		return err
	}
	for _, fe := range c.Errors {
		app.Log.Warn("skipping unreadable recipe file", observability.String(observability.KeyFile, fe.File), observability.Err(fe.Err))
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("no recipes found in %s", input)
	}
	rows := appexport.Build(c.Records())
	files, err := appexport.Write(outDir, rows)
	if err != nil {
		return err
	}

	s := appexport.Summarize(rows)
	fields := []observability.Field{
		observability.Int("recipes", s.Recipes),
		observability.Int("with_tags", s.WithTags),
		observability.Int("cooked", s.Cooked),
	}
	if s.PrepCount > 0 {
		fields = append(fields, observability.Float64("avg_prep_min", s.AvgPrep))
	}
	if s.CookCount > 0 {
		fields = append(fields, observability.Float64("avg_cook_min", s.AvgCook))
	}
	if s.CalCount > 0 {
		fields = append(fields, observability.Float64("avg_calories", s.AvgCalories))
	}
	app.Log.Info("export complete", fields...)
	for _, p := range []string{files.Full, files.CSV, files.Simple} {
		app.Log.Info("wrote", observability.String(observability.KeyPath, p))
	}
	return nil
}
