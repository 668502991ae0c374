// Package cookbook extracts recipes from two-column cookbook PDFs where each
// recipe occupies one page: ingredients on the left, title, introduction
// and directions on the right.
package cookbook

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/extractor"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/ocr"
	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/textclean"
)

// Settings controls page selection, column splitting and the OCR fallback.
type Settings struct {
	StartPage       int // zero-based
	PageStride      int
	ColumnSplit     float64
	PageWidth       float64
	GarbleThreshold float64
	SourceURL       string
	Footer          *regexp.Regexp
	ForceOCR        bool
	OCRDebug        bool

	DPI       int
	Scale     float64
	Languages []string
	PSM       int
}

// SettingsFrom builds Settings from the cookbook and ocr config sections.
func SettingsFrom(c config.CookbookConfig, o config.OCRConfig) (Settings, error) {
	s := Settings{
		StartPage:       c.StartPage,
		PageStride:      c.PageStride,
		ColumnSplit:     c.ColumnSplit,
		PageWidth:       c.PageWidth,
		GarbleThreshold: c.GarbleThreshold,
		SourceURL:       c.SourceURL,
		ForceOCR:        c.ForceOCR,
		OCRDebug:        c.OCRDebug,
		DPI:             o.DPI,
		Scale:           o.Scale,
		Languages:       o.Languages,
		PSM:             o.PSM,
	}
	if c.FooterPattern != "" {
		re, err := regexp.Compile(c.FooterPattern)
		if err != nil {
			return Settings{}, fmt.Errorf("footer pattern: %w", err)
		}
		s.Footer = re
	}
	return s, nil
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOCR enables the OCR fallback using r to render pages and engine to
// read them.
func WithOCR(r Renderer, engine ocr.Engine) Option {
	return func(e *Extractor) {
		e.render = r
		e.engine = engine
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Extractor) { e.log = observability.OrNop(l) }
}

// WithSourceFile records file as the provenance of every extracted record.
func WithSourceFile(file string) Option {
	return func(e *Extractor) { e.sourceFile = filepath.Base(file) }
}

type Extractor struct {
	settings   Settings
	src        PageSource
	render     Renderer
	engine     ocr.Engine
	log        observability.Logger
	sourceFile string
}

func New(settings Settings, src PageSource, opts ...Option) *Extractor {
	if settings.PageStride <= 0 {
		settings.PageStride = 1
	}
	if settings.StartPage < 0 {
		settings.StartPage = 0
	}
	e := &Extractor{settings: settings, src: src, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageIndexes returns the zero-based pages holding recipes.
func (e *Extractor) PageIndexes() []int {
	var out []int
	for i := e.settings.StartPage; i < e.src.NumPages(); i += e.settings.PageStride {
		out = append(out, i)
	}
	return out
}

func (e *Extractor) ocrEnabled() bool {
	return e.render != nil && ocr.Available(e.engine)
}

// Pages reads and cleans every recipe page. Unreadable pages are logged and
// skipped.
func (e *Extractor) Pages(ctx context.Context) ([]Page, error) {
	indexes := e.PageIndexes()
	e.log.Info("pdf opened", observability.Int("pages", e.src.NumPages()), observability.Int("recipe_pages", len(indexes)))

	pages := make([]Page, 0, len(indexes))
	for _, i := range indexes {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		p, err := e.page(ctx, i)
		if err != nil {
			e.log.Warn("page skipped", observability.Int(observability.KeyPage, i+1), observability.Err(err))
			continue
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (e *Extractor) page(ctx context.Context, i int) (Page, error) {
	s := e.settings
	text, err := e.src.PageText(i, s.ColumnSplit)
	if err != nil && !errors.Is(err, extractor.ErrNoText) {
		return Page{}, err
	}
	if s.PageWidth > 0 && text.Width > 0 && math.Abs(text.Width-s.PageWidth) > 1 {
		e.log.Debug("unexpected page width",
			observability.Int(observability.KeyPage, i+1),
			observability.Float64("width", text.Width),
			observability.Float64("expected", s.PageWidth))
	}

	p := Page{Index: i, Left: text.Left, Right: text.Right}
	p.GarbleScore = textclean.GarbleScore(text.Raw)
	debug := e.log.Debug
	if s.OCRDebug {
		debug = e.log.Info
	}
	debug("garble score", observability.Int(observability.KeyPage, i+1), observability.Float64("score", p.GarbleScore))

	if e.ocrEnabled() && (s.ForceOCR || p.GarbleScore > s.GarbleThreshold) {
		width := text.Width
		if width <= 0 {
			width = s.PageWidth
		}
		cols, err := e.recognize(ctx, i, width)
		switch {
		case err != nil:
			e.log.Warn("ocr failed", observability.Int(observability.KeyPage, i+1), observability.Err(err))
		default:
			p.Left, p.Right, p.OCR = cols.left, cols.right, true
			debug("ocr used",
				observability.Int(observability.KeyPage, i+1),
				observability.Bool("forced", s.ForceOCR),
				observability.Bool("whole_page", cols.wholePage),
				observability.Float64("score", p.GarbleScore),
				observability.Float64("confidence", cols.confidence))
		}
	}

	p.Left = textclean.Clean(p.Left)
	p.Right = textclean.Clean(p.Right)
	return p, nil
}

type ocrColumns struct {
	left, right string
	confidence  float64
	wholePage   bool
}

// recognize renders page i once and reads each column from its own crop,
// cut at the configured split. When neither crop yields text the whole page
// is read and its lines are halved instead.
func (e *Extractor) recognize(ctx context.Context, i int, width float64) (ocrColumns, error) {
	s := e.settings
	dpi := s.DPI
	if dpi <= 0 {
		dpi = 200
	}
	img, err := e.render.RenderPage(i, float64(dpi))
	if err != nil {
		return ocrColumns{}, err
	}
	page, err := ocr.InputFromImage(img, i,
		ocr.WithDPI(dpi),
		ocr.WithScale(s.Scale),
		ocr.WithLanguages(s.Languages...),
		ocr.WithTesseractPSM(s.PSM),
	)
	if err != nil {
		return ocrColumns{}, err
	}

	split := 0.5
	if width > 0 && s.ColumnSplit > 0 {
		split = s.ColumnSplit / width
	}
	left, right := ocr.SplitColumns(page, split)
	res, err := ocr.RecognizeAll(ctx, e.engine, []ocr.Input{left, right})
	if err != nil {
		return ocrColumns{}, err
	}
	cols := ocrColumns{
		left:       strings.TrimSpace(res[0].PlainText),
		right:      strings.TrimSpace(res[1].PlainText),
		confidence: (res[0].Confidence + res[1].Confidence) / 2,
	}
	if cols.left != "" || cols.right != "" {
		return cols, nil
	}

	full, err := e.engine.Recognize(ctx, page)
	if err != nil {
		return ocrColumns{}, err
	}
	cols.left, cols.right = ocr.SplitHalves(full.PlainText)
	cols.confidence, cols.wholePage = full.Confidence, true
	return cols, nil
}

// Extract parses every recipe page. Pages that yield no title or no
// ingredients are logged and left out, so each returned record is
// exportable.
func (e *Extractor) Extract(ctx context.Context) ([]recipe.Record, error) {
	pages, err := e.Pages(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]recipe.Record, 0, len(pages))
	for n, p := range pages {
		rec := Parse(p, e.settings.SourceURL, e.settings.Footer)
		rec.SourceFile = e.sourceFile
		if err := rec.Validate(); err != nil {
			e.log.Warn("page has no recipe", observability.Int(observability.KeyPage, p.Index+1), observability.Err(err))
			continue
		}
		e.log.Info("parsed",
			observability.String("progress", fmt.Sprintf("%d/%d", n+1, len(pages))),
			observability.Int(observability.KeyPage, p.Index+1),
			observability.String(observability.KeyTitle, rec.Title),
			observability.Bool("ocr", p.OCR))
		records = append(records, rec)
	}
	return records, nil
}
