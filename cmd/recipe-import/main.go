// Command recipe-import converts an inbox of PDFs, text, Markdown, CSV and
// YAML files into one recipe export, routing low-confidence records to a
// review file.
package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/export"
	"github.com/wudi/recipekit/observability"
	_ "github.com/wudi/recipekit/ocr/tesseract"
	"github.com/wudi/recipekit/universal"
)

type options struct {
	outDir    string
	threshold float64
	maxPages  int
	noMove    bool
	perRecord bool
	include   []string
}

func main() {
	var opts options
	cmd, app := cliutil.NewCommand("recipe-import [flags] <inbox>", "Import recipes from an inbox of mixed files",
		cobra.ExactArgs(1), func(ctx context.Context, app *cliutil.App, args []string) error {
			return run(ctx, app, opts, args[0])
		})
	flags := cmd.Flags()
	flags.StringVarP(&opts.outDir, "out", "o", "", "output directory (default from config)")
	flags.Float64Var(&opts.threshold, "threshold", 0, "minimum confidence for the export (default from config)")
	flags.IntVar(&opts.maxPages, "max-pages", 0, "pages read per PDF (default from config)")
	flags.BoolVar(&opts.noMove, "no-move", false, "leave processed PDFs in the inbox")
	flags.BoolVar(&opts.perRecord, "per-record", false, "also write one YAML file per recipe")
	flags.StringSliceVar(&opts.include, "include", nil, "glob patterns selecting inbox files (default from config)")
	cliutil.Main(cmd, app)
}

func run(ctx context.Context, app *cliutil.App, opts options, inbox string) error {
	cfg := app.Config.Universal
	if opts.threshold > 0 {
		cfg.ConfidenceThreshold = opts.threshold
	}
	if opts.maxPages > 0 {
		cfg.MaxPages = opts.maxPages
	}
	if opts.noMove {
		cfg.MoveProcessed = false
	}
	if len(opts.include) > 0 {
		cfg.Include = opts.include
	}
	cfg.PerRecordYAML = cfg.PerRecordYAML || opts.perRecord

	engine, ok := app.OCREngine()
	settings := universal.SettingsFrom(cfg, app.Config.OCR)
	settings.OCR = ok

	res, err := universal.New(settings, universal.WithEngine(engine), universal.WithLogger(app.Log)).Run(ctx, inbox)
	if err != nil {
		return err
	}
	bundle, err := export.WriteAll(app.OutputDir(opts.outDir), res.Records, res.Review,
		export.Options{PerRecordYAML: cfg.PerRecordYAML, Combined: true, Text: true})
	if err != nil {
		return err
	}
	app.Log.Info("import complete",
		observability.Int("files", res.Files),
		observability.Int("failed", res.Failed),
		observability.Int("moved", res.Moved),
		observability.Int("exported", len(res.Records)),
		observability.Int("review", len(res.Review)),
		observability.String(observability.KeyPath, bundle.CSV))
	return nil
}
