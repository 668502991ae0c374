// Package pdffixture writes small, valid PDFs for tests: Courier text placed
// at absolute positions and optional grayscale images.
package pdffixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// Text is one line of text with its baseline origin in PDF user space
// (points, origin bottom-left).
type Text struct {
	X, Y float64
	S    string
	Size float64 // defaults to 12
}

// Image is an 8-bit grayscale image drawn at X, Y with its own pixel size.
type Image struct {
	X, Y          float64
	Width, Height int
	Pixels        []byte
}

type Page struct {
	Width, Height float64 // defaults to 612 x 792
	Lines         []Text
	Images        []Image
}

// Column lays out lines top-down from y with the given leading.
func Column(x, y, leading float64, lines ...string) []Text {
	out := make([]Text, len(lines))
	for i, ln := range lines {
		out[i] = Text{X: x, Y: y - float64(i)*leading, S: ln}
	}
	return out
}

type builder struct {
	buf     bytes.Buffer
	offsets []int
}

func (b *builder) object(body string) int {
	b.offsets = append(b.offsets, b.buf.Len())
	num := len(b.offsets)
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	return num
}

func (b *builder) stream(dict string, data []byte) int {
	b.offsets = append(b.offsets, b.buf.Len())
	num := len(b.offsets)
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
	return num
}

// Build renders pages into a complete PDF file.
func Build(pages ...Page) ([]byte, error) {
	b := &builder{}
	b.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// Object numbers 1 and 2 are fixed: catalog and page tree. Page objects
	// follow the font, so their numbers are known before they are written.
	b.object("<< /Type /Catalog /Pages 2 0 R >>")
	pagesAt := len(b.offsets)
	b.offsets = append(b.offsets, 0) // page tree, patched below

	widths := strings.TrimSpace(strings.Repeat("600 ", 126-32+1))
	font := b.object(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))

	var kids []string
	for _, p := range pages {
		w, h := p.Width, p.Height
		if w == 0 {
			w = 612
		}
		if h == 0 {
			h = 792
		}

		var xobjects []string
		var content bytes.Buffer
		for i, img := range p.Images {
			data, err := deflate(img.Pixels)
			if err != nil {
				return nil, err
			}
			num := b.stream(fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode", img.Width, img.Height), data)
			name := fmt.Sprintf("Im%d", i+1)
			xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", name, num))
			fmt.Fprintf(&content, "q %d 0 0 %d %s %s cm /%s Do Q\n", img.Width, img.Height, num2s(img.X), num2s(img.Y), name)
		}
		for _, ln := range p.Lines {
			size := ln.Size
			if size == 0 {
				size = 12
			}
			fmt.Fprintf(&content, "BT /F1 %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n", num2s(size), num2s(ln.X), num2s(ln.Y), escape(ln.S))
		}

		contents := b.stream("", content.Bytes())
		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if len(xobjects) > 0 {
			resources += " /XObject << " + strings.Join(xobjects, " ") + " >>"
		}
		page := b.object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << %s >> /Contents %d 0 R >>",
			num2s(w), num2s(h), resources, contents))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	b.offsets[pagesAt] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", pagesAt+1, strings.Join(kids, " "), len(kids))

	xrefAt := b.buf.Len()
	size := len(b.offsets) + 1
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", size)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefAt)
	return b.buf.Bytes(), nil
}

// Write builds the PDF into dir/name and returns its path.
func Write(tb testing.TB, dir, name string, pages ...Page) string {
	tb.Helper()
	data, err := Build(pages...)
	if err != nil {
		tb.Fatalf("build pdf: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write pdf: %v", err)
	}
	return path
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate image: %w", err)
	}
	return buf.Bytes(), nil
}

func num2s(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

var escaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

func escape(s string) string {
	return escaper.Replace(s)
}
