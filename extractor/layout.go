package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Glyph is one positioned text run as drawn on the page. X, Y is the
// baseline origin in PDF user space.
type Glyph struct {
	X, Y float64
	W    float64
	Size float64
	S    string
}

// Word is a run of glyphs without whitespace or a horizontal gap. Top is
// measured from the top edge of the page.
type Word struct {
	Text   string
	X0, X1 float64
	Top    float64
}

// Line is a set of words sharing a baseline, ordered left to right.
type Line struct {
	Top   float64
	Words []Word
}

func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Columns holds the text on either side of a vertical split.
type Columns struct {
	Left, Right string
}

const (
	// yTolerance groups glyphs whose baselines differ by less than this.
	yTolerance = 3.0
	// xTolerance splits words on horizontal gaps wider than this.
	xTolerance = 3.0
)

// Page holds the glyphs of one page, sorted top to bottom, left to right.
type Page struct {
	Index  int
	width  float64
	height float64
	glyphs []Glyph
}

// NewPage builds a page from glyphs obtained elsewhere.
func NewPage(index int, width, height float64, glyphs []Glyph) *Page {
	p := &Page{Index: index, width: width, height: height, glyphs: append([]Glyph(nil), glyphs...)}
	sort.SliceStable(p.glyphs, func(a, b int) bool {
		if p.glyphs[a].Y != p.glyphs[b].Y {
			return p.glyphs[a].Y > p.glyphs[b].Y
		}
		return p.glyphs[a].X < p.glyphs[b].X
	})
	return p
}

func (p *Page) Width() float64  { return p.width }
func (p *Page) Height() float64 { return p.height }

func (p *Page) Glyphs() []Glyph { return p.glyphs }

// HasText reports whether the page carries any non-blank glyph.
func (p *Page) HasText() bool {
	for _, g := range p.glyphs {
		if strings.TrimSpace(g.S) != "" {
			return true
		}
	}
	return false
}

// RawText concatenates glyph strings in drawing order, unprocessed. Used to
// judge text layer quality before any cleanup.
func (p *Page) RawText() string {
	var b strings.Builder
	for _, g := range p.glyphs {
		b.WriteString(g.S)
	}
	return b.String()
}

// Lines groups glyphs into lines and words.
func (p *Page) Lines() []Line {
	var lines []Line
	var row []Glyph
	baseline := math.NaN()
	flush := func() {
		if len(row) == 0 {
			return
		}
		if words := p.words(row); len(words) > 0 {
			lines = append(lines, Line{Top: words[0].Top, Words: words})
		}
		row = row[:0]
	}
	for _, g := range p.glyphs {
		if !math.IsNaN(baseline) && math.Abs(g.Y-baseline) > yTolerance {
			flush()
		}
		if len(row) == 0 {
			baseline = g.Y
		}
		row = append(row, g)
	}
	flush()
	return lines
}

func (p *Page) words(row []Glyph) []Word {
	sorted := append([]Glyph(nil), row...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].X < sorted[b].X })

	var words []Word
	var cur strings.Builder
	var w Word
	prevEnd := math.Inf(-1)
	emit := func() {
		if cur.Len() > 0 {
			w.Text = cur.String()
			words = append(words, w)
		}
		cur.Reset()
	}
	for _, g := range sorted {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			emit()
			prevEnd = g.X + g.W
			continue
		}
		if cur.Len() > 0 && g.X-prevEnd > xTolerance {
			emit()
		}
		if cur.Len() == 0 {
			w = Word{X0: g.X, Top: p.height - g.Y - g.Size}
		}
		cur.WriteString(g.S)
		w.X1 = g.X + g.W
		prevEnd = w.X1
	}
	emit()
	return words
}

// Columns splits every line at x = split: words starting left of it go to
// the left column, the rest to the right. Line order is preserved.
func (p *Page) Columns(split float64) Columns {
	var left, right []string
	for _, ln := range p.Lines() {
		var l, r []string
		for _, w := range ln.Words {
			if w.X0 < split {
				l = append(l, w.Text)
			} else {
				r = append(r, w.Text)
			}
		}
		if len(l) > 0 {
			left = append(left, strings.Join(l, " "))
		}
		if len(r) > 0 {
			right = append(right, strings.Join(r, " "))
		}
	}
	return Columns{Left: strings.Join(left, "\n"), Right: strings.Join(right, "\n")}
}

// Text returns every line of the page, top to bottom.
func (p *Page) Text() string {
	lines := p.Lines()
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Text()
	}
	return strings.Join(out, "\n")
}

// Words returns every word on the page in reading order.
func (p *Page) Words() []Word {
	var out []Word
	for _, ln := range p.Lines() {
		out = append(out, ln.Words...)
	}
	return out
}
