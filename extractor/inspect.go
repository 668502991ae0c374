package extractor

import (
	"fmt"

	"github.com/wudi/recipekit/textclean"
)

// Report summarizes one page for the pdf-inspect tool.
type Report struct {
	Path         string
	Pages        int
	Page         int // zero-based
	Width        float64
	Height       float64
	HasTextLayer bool
	GlyphCount   int
	FirstWords   []Word
	Columns      Columns
	GarbleScore  float64
}

// FirstWordCount bounds Report.FirstWords.
const FirstWordCount = 20

// Columns loads page i and splits it at x = split. Pages without a text
// layer return ErrNoText.
func (d *Document) Columns(i int, split float64) (Columns, error) {
	p, err := d.Page(i)
	if err != nil {
		return Columns{}, err
	}
	if !p.HasText() {
		return Columns{}, fmt.Errorf("page %d: %w", i+1, ErrNoText)
	}
	return p.Columns(split), nil
}

// Inspect opens path and reports on page i with the columns split at
// split. A zero split uses the page midpoint.
func Inspect(path string, i int, split float64) (Report, error) {
	doc, err := Open(path)
	if err != nil {
		return Report{}, err
	}
	defer doc.Close()

	p, err := doc.Page(i)
	if err != nil {
		return Report{}, err
	}
	if split <= 0 {
		split = p.Width() / 2
	}

	words := p.Words()
	if len(words) > FirstWordCount {
		words = words[:FirstWordCount]
	}
	cols := p.Columns(split)
	return Report{
		Path:         path,
		Pages:        doc.NumPages(),
		Page:         i,
		Width:        p.Width(),
		Height:       p.Height(),
		HasTextLayer: p.HasText(),
		GlyphCount:   len(p.Glyphs()),
		FirstWords:   words,
		Columns: Columns{
			Left:  textclean.Clean(cols.Left),
			Right: textclean.Clean(cols.Right),
		},
		GarbleScore: textclean.GarbleScore(p.RawText()),
	}, nil
}
