package extractor

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Renderer rasterizes pages for OCR and offers MuPDF's own text extraction
// as a fallback when the glyph layout is unusable.
type Renderer struct {
	doc *fitz.Document
}

func NewRenderer(path string) (*Renderer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open renderer %s: %w", path, err)
	}
	return &Renderer{doc: doc}, nil
}

func (r *Renderer) NumPages() int { return r.doc.NumPage() }

// RenderPage draws page n at the given resolution.
func (r *Renderer) RenderPage(n int, dpi float64) (image.Image, error) {
	if n < 0 || n >= r.doc.NumPage() {
		return nil, fmt.Errorf("render page %d: %w", n+1, ErrPageRange)
	}
	img, err := r.doc.ImageDPI(n, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n+1, err)
	}
	return img, nil
}

// PlainText returns MuPDF's reading-order text for page n.
func (r *Renderer) PlainText(n int) (string, error) {
	if n < 0 || n >= r.doc.NumPage() {
		return "", fmt.Errorf("text page %d: %w", n+1, ErrPageRange)
	}
	txt, err := r.doc.Text(n)
	if err != nil {
		return "", fmt.Errorf("text page %d: %w", n+1, err)
	}
	return txt, nil
}

func (r *Renderer) Close() error {
	return r.doc.Close()
}
