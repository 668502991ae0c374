// Package universal imports recipes from an inbox of arbitrary files: text
// based or scanned PDFs, plain text, Markdown, CSV and YAML. Every record
// carries a confidence score; records under the threshold are routed to a
// review list instead of the export.
package universal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/extractor"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/ocr"
	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/recipeparse"
	"github.com/wudi/recipekit/textclean"
)

// Confidence adjustments for extracted text.
const (
	BaseConfidence = 0.5
	GarblePenalty  = 0.2
	OCRBonus       = 0.3

	// MinOCRConfidence is the mean word confidence below which OCR text is
	// not trusted over the text layer. Engines reporting zero are trusted.
	MinOCRConfidence = 0.3

	ocrTrigger           = 0.4
	structuredConfidence = 1.0
)

type Settings struct {
	ConfidenceThreshold float64
	MaxPages            int
	MoveProcessed       bool
	Include             []string

	OCR       bool
	DPI       int
	Scale     float64
	Languages []string
	PSM       int
}

func SettingsFrom(u config.UniversalConfig, o config.OCRConfig) Settings {
	return Settings{
		ConfidenceThreshold: u.ConfidenceThreshold,
		MaxPages:            u.MaxPages,
		MoveProcessed:       u.MoveProcessed,
		Include:             u.Include,
		OCR:                 o.Enabled,
		DPI:                 o.DPI,
		Scale:               o.Scale,
		Languages:           o.Languages,
		PSM:                 o.PSM,
	}
}

type Option func(*Importer)

func WithEngine(e ocr.Engine) Option {
	return func(im *Importer) { im.engine = e }
}

func WithLogger(l observability.Logger) Option {
	return func(im *Importer) { im.log = observability.OrNop(l) }
}

type Importer struct {
	settings Settings
	engine   ocr.Engine
	log      observability.Logger
}

func New(s Settings, opts ...Option) *Importer {
	im := &Importer{settings: s, engine: ocr.DefaultEngine(), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Result is the outcome of one inbox run.
type Result struct {
	// Records passed the confidence threshold.
	Records []recipe.Record
	// Review holds the records that did not.
	Review []recipe.Record
	Files  int
	Failed int
	Moved  int
}

// Run imports every matching file in inbox. A file that cannot be read or
// parsed is logged and skipped.
func (im *Importer) Run(ctx context.Context, inbox string) (Result, error) {
	var res Result
	files, err := Discover(inbox, im.settings.Include)
	if err != nil {
		return res, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Files++
		kind, recs, err := im.ImportFile(ctx, f)
		if err != nil {
			res.Failed++
			im.log.Error("import failed", observability.String(observability.KeyFile, f), observability.Err(err))
			continue
		}
		kept := 0
		for _, r := range recs {
			if r.Confidence >= im.settings.ConfidenceThreshold {
				res.Records = append(res.Records, r)
				kept++
			} else {
				res.Review = append(res.Review, r)
			}
		}
		im.log.Info("imported",
			observability.String(observability.KeyFile, filepath.Base(f)),
			observability.String("kind", kind.String()),
			observability.Int("records", kept),
			observability.Int("review", len(recs)-kept),
			observability.Int("total", len(res.Records)))

		if kind == KindPDF && im.settings.MoveProcessed {
			if _, err := MoveProcessed(inbox, f); err != nil {
				im.log.Warn("move failed", observability.String(observability.KeyFile, f), observability.Err(err))
				continue
			}
			res.Moved++
		}
	}
	return res, nil
}

// ImportFile parses one file of any supported kind. Records carry
// SourceFile, Confidence and, for PDFs, the one-based Page.
func (im *Importer) ImportFile(ctx context.Context, path string) (Kind, []recipe.Record, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return kind, nil, err
	}
	var recs []recipe.Record
	switch kind {
	case KindPDF:
		recs, err = im.importPDF(ctx, path)
	case KindCSV:
		recs, err = importCSV(path)
	case KindYAML:
		recs, err = recipe.ReadFile(path)
		for i := range recs {
			recs[i].Confidence = structuredConfidence
		}
	case KindText, KindMarkdown:
		var rec recipe.Record
		rec, err = importText(path, kind)
		recs = []recipe.Record{rec}
	}
	if err != nil {
		return kind, nil, err
	}
	name := filepath.Base(path)
	for i := range recs {
		if recs[i].SourceFile == "" {
			recs[i].SourceFile = name
		}
	}
	return kind, recs, nil
}

func importCSV(path string) ([]recipe.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := recipe.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range recs {
		recs[i].Confidence = structuredConfidence
	}
	return recs, nil
}

func importText(path string, kind Kind) (recipe.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recipe.Record{}, err
	}
	text, err := DecodeText(data)
	if err != nil {
		return recipe.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	text = textclean.Clean(text)

	var rec recipe.Record
	if kind == KindMarkdown {
		rec = recipeparse.ParseMarkdown([]byte(text))
	} else {
		rec = recipeparse.ParseText(text)
	}
	rec.Confidence = BaseConfidence
	if textclean.IsGarbled(text) {
		rec.Confidence -= GarblePenalty
	}
	return rec, nil
}

func (im *Importer) importPDF(ctx context.Context, path string) ([]recipe.Record, error) {
	doc, err := extractor.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var render *extractor.Renderer
	if r, err := extractor.NewRenderer(path); err != nil {
		im.log.Warn("renderer unavailable", observability.String(observability.KeyFile, path), observability.Err(err))
	} else {
		render = r
		defer render.Close()
	}

	total := doc.NumPages()
	if im.settings.MaxPages > 0 && total > im.settings.MaxPages {
		total = im.settings.MaxPages
	}
	var recs []recipe.Record
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, conf, err := im.bestText(ctx, doc, render, i)
		if err != nil {
			im.log.Warn("page skipped", observability.String(observability.KeyFile, path), observability.Int(observability.KeyPage, i+1), observability.Err(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec := recipeparse.ParseText(text)
		rec.Page = i + 1
		rec.Confidence = conf
		recs = append(recs, rec)
	}
	return recs, nil
}

// bestText tries the two-zone text layer, then the full page text, then OCR,
// and scores the result.
func (im *Importer) bestText(ctx context.Context, doc *extractor.Document, render *extractor.Renderer, i int) (string, float64, error) {
	p, err := doc.Page(i)
	if err != nil {
		return "", 0, err
	}
	cols := p.Columns(p.Width() / 2)
	merged := textclean.Clean(strings.TrimSpace(cols.Left + "\n" + cols.Right))
	if merged == "" || textclean.IsGarbled(merged) {
		full := p.Text()
		if render != nil {
			if t, err := render.PlainText(i); err == nil && strings.TrimSpace(t) != "" {
				full = t
			}
		}
		merged = textclean.Clean(full)
	}

	conf := BaseConfidence
	if textclean.IsGarbled(merged) {
		conf -= GarblePenalty
	}
	if im.settings.OCR && render != nil && ocr.Available(im.engine) && (merged == "" || conf < ocrTrigger) {
		res, err := im.recognize(ctx, render, i)
		switch {
		case err != nil:
			im.log.Warn("ocr failed", observability.Int(observability.KeyPage, i+1), observability.Err(err))
		case res.Confidence > 0 && res.Confidence < MinOCRConfidence:
			im.log.Debug("ocr text rejected",
				observability.Int(observability.KeyPage, i+1),
				observability.Float64("confidence", res.Confidence))
		case len(res.PlainText) > len(merged):
			merged = textclean.Clean(res.PlainText)
			conf += OCRBonus
		}
	}
	return merged, clamp(conf), nil
}

func (im *Importer) recognize(ctx context.Context, render *extractor.Renderer, i int) (ocr.Result, error) {
	dpi := im.settings.DPI
	if dpi <= 0 {
		dpi = 200
	}
	img, err := render.RenderPage(i, float64(dpi))
	if err != nil {
		return ocr.Result{}, err
	}
	in, err := ocr.InputFromImage(img, i,
		ocr.WithDPI(dpi),
		ocr.WithScale(im.settings.Scale),
		ocr.WithLanguages(im.settings.Languages...),
		ocr.WithTesseractPSM(im.settings.PSM),
	)
	if err != nil {
		return ocr.Result{}, err
	}
	return im.engine.Recognize(ctx, in)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
