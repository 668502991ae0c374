// Command recipe-extract turns a two-column cookbook PDF into one YAML file
// per recipe plus a combined CSV, with page images alongside.
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/cookbook"
	"github.com/wudi/recipekit/export"
	"github.com/wudi/recipekit/extractor"
	"github.com/wudi/recipekit/observability"
	_ "github.com/wudi/recipekit/ocr/tesseract"
)

type options struct {
	outDir    string
	startPage int
	stride    int
	forceOCR  bool
	ocrDebug  bool
	noImages  bool
	text      bool
}

func main() {
	var opts options
	cmd, app := cliutil.NewCommand("recipe-extract [flags] <pdf>", "Extract one recipe per page from a two-column cookbook PDF",
		cobra.ExactArgs(1), func(ctx context.Context, app *cliutil.App, args []string) error {
			return run(ctx, app, opts, args[0])
		})
	flags := cmd.Flags()
	flags.StringVarP(&opts.outDir, "out", "o", "", "output directory (default from config)")
	flags.IntVar(&opts.startPage, "start-page", 0, "first recipe page, one-based (default from config)")
	flags.IntVar(&opts.stride, "stride", 0, "pages per recipe (default from config)")
	flags.BoolVar(&opts.forceOCR, "force-ocr", false, "OCR every page even when the text layer is clean")
	flags.BoolVar(&opts.ocrDebug, "ocr-debug", false, "log OCR decisions per page")
	flags.BoolVar(&opts.noImages, "no-images", false, "skip page image extraction")
	flags.BoolVar(&opts.text, "text", false, "also write a plain-text listing")
	cliutil.Main(cmd, app)
}

func run(ctx context.Context, app *cliutil.App, opts options, pdfPath string) error {
	cfg := app.Config
	if opts.startPage > 0 {
		cfg.Cookbook.StartPage = opts.startPage - 1
	}
	if opts.stride > 0 {
		cfg.Cookbook.PageStride = opts.stride
	}
	cfg.Cookbook.ForceOCR = cfg.Cookbook.ForceOCR || opts.forceOCR
	cfg.Cookbook.OCRDebug = cfg.Cookbook.OCRDebug || opts.ocrDebug

	settings, err := cookbook.SettingsFrom(cfg.Cookbook, cfg.OCR)
	if err != nil {
		return cliutil.UsageError{Err: err}
	}
	doc, err := extractor.Open(pdfPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	log := app.Log.With(observability.String(observability.KeyFile, filepath.Base(pdfPath)))
	extractOpts := []cookbook.Option{cookbook.WithLogger(log), cookbook.WithSourceFile(pdfPath)}
	if engine, ok := app.OCREngine(); ok {
		render, err := extractor.NewRenderer(pdfPath)
		if err != nil {
			log.Warn("page rendering unavailable, OCR disabled", observability.Err(err))
		} else {
			defer render.Close()
			extractOpts = append(extractOpts, cookbook.WithOCR(render, engine))
		}
	}

	records, err := cookbook.New(settings, cookbook.FromDocument(doc), extractOpts...).Extract(ctx)
	if err != nil {
		return err
	}
	outDir := app.OutputDir(opts.outDir)
	if cfg.Cookbook.ExtractImages && !opts.noImages {
		n, err := cookbook.AttachImages(pdfPath, outDir, records, log)
		if err != nil {
			log.Warn("image extraction failed", observability.Err(err))
		} else {
			log.Info("extracted images", observability.Int(observability.KeyCount, n))
		}
	}
	bundle, err := export.WriteAll(outDir, records, nil, export.Options{PerRecordYAML: true, Text: opts.text})
	if err != nil {
		return err
	}
	log.Info("export complete",
		observability.Int("recipes", len(records)),
		observability.Int("yaml_files", len(bundle.Files)),
		observability.String(observability.KeyPath, bundle.CSV))
	if len(records) == 0 {
		return fmt.Errorf("no recipes found in %s", pdfPath)
	}
	return nil
}
