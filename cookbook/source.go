package cookbook

import (
	"image"

	"github.com/wudi/recipekit/extractor"
)

// PageText is the raw text layer of one page split into columns.
type PageText struct {
	Left, Right string
	// Raw is the unprocessed glyph text used to judge layer quality.
	Raw   string
	Width float64
}

// PageSource supplies column text per zero-based page index.
type PageSource interface {
	NumPages() int
	PageText(i int, split float64) (PageText, error)
}

// Renderer rasterizes a page for OCR.
type Renderer interface {
	RenderPage(n int, dpi float64) (image.Image, error)
}

type documentSource struct {
	doc *extractor.Document
}

// FromDocument reads pages from the PDF text layer.
func FromDocument(doc *extractor.Document) PageSource {
	return documentSource{doc: doc}
}

func (s documentSource) NumPages() int { return s.doc.NumPages() }

func (s documentSource) PageText(i int, split float64) (PageText, error) {
	p, err := s.doc.Page(i)
	if err != nil {
		return PageText{}, err
	}
	cols := p.Columns(split)
	return PageText{Left: cols.Left, Right: cols.Right, Raw: p.RawText(), Width: p.Width()}, nil
}
