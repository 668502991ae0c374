package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// InputOption adjusts an Input before its image is encoded.
type InputOption func(*Input)

func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion restricts recognition to region; an empty region clears it.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithScale upsamples the render by factor before recognition. Tesseract
// reads small body text better at roughly 300 DPI.
func WithScale(factor float64) InputOption {
	return func(in *Input) { in.Scale = factor }
}

// InputFromImage encodes a page render as PNG. The ID is stable per page so
// results can be matched back to the page they came from.
func InputFromImage(img image.Image, page int, opts ...InputOption) (Input, error) {
	in := Input{
		ID:        fmt.Sprintf("page-%d", page),
		Format:    ImageFormatPNG,
		PageIndex: page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	if in.Scale > 1 {
		img = upscale(img, in.Scale)
		if in.DPI > 0 {
			in.DPI = int(math.Round(float64(in.DPI) * in.Scale))
		}
	}

	b := img.Bounds()
	in.Width, in.Height = b.Dx(), b.Dy()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode page %d: %w", page, err)
	}
	in.Image = buf.Bytes()
	return in, nil
}

func upscale(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
