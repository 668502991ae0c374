// Package extractor reads positioned text, page renders and embedded images
// out of PDF files.
//
// The text layer comes from github.com/ledongthuc/pdf, rendering and plain
// text fallback from MuPDF via go-fitz, and image extraction and page
// counting from pdfcpu.
package extractor

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNoText is returned for pages without a usable text layer.
	ErrNoText = errors.New("page has no text layer")
	// ErrPageRange is returned for page indexes outside the document.
	ErrPageRange = errors.New("page out of range")
)

// Document is an open PDF. Page indexes are zero-based throughout.
type Document struct {
	path string
	file *os.File
	r    *pdf.Reader
}

// Open opens path for text extraction. Close releases the file.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &Document{path: path, file: f, r: r}, nil
}

func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *Document) Path() string { return d.path }

// NumPages reports the page count from the page tree.
func (d *Document) NumPages() int { return d.r.NumPage() }

// Page loads the glyphs of page i. Malformed content streams surface as
// errors instead of panics.
func (d *Document) Page(i int) (page *Page, err error) {
	if i < 0 || i >= d.r.NumPage() {
		return nil, fmt.Errorf("page %d: %w", i+1, ErrPageRange)
	}
	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w", i+1, ErrPageRange)
	}

	defer func() {
		if rec := recover(); rec != nil {
			page, err = nil, fmt.Errorf("page %d: malformed content: %v", i+1, rec)
		}
	}()

	width, height := mediaBox(p.V)
	var glyphs []Glyph
	for _, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	return NewPage(i, width, height, glyphs), nil
}

// Default US Letter when a page tree carries no MediaBox.
const (
	defaultWidth  = 612
	defaultHeight = 792
)

// mediaBox walks up the page tree for an inherited MediaBox.
func mediaBox(v pdf.Value) (float64, float64) {
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultWidth, defaultHeight
}
