package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const ImageFormatPNG ImageFormat = "image/png"

// Region is a rectangle in pixel coordinates, origin top-left.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is one page render submitted for recognition.
type Input struct {
	// ID is echoed back in Result.InputID.
	ID     string
	Image  []byte
	Format ImageFormat
	// Width and Height are the pixel size of Image.
	Width  int
	Height int
	// PageIndex is the zero-based PDF page the render came from.
	PageIndex int
	// DPI of the render; zero means unknown.
	DPI int
	// Languages are trained-data names such as "eng".
	Languages []string
	// Region restricts recognition to part of the image. Nil means all of it.
	Region *Region
	// Scale upsamples the image before encoding when greater than 1.
	Scale float64
	// Metadata passes engine variables through, e.g. tessedit_pageseg_mode.
	Metadata map[string]string
}

// Result is the recognized text for one Input.
type Result struct {
	InputID   string
	PlainText string
	// Confidence is the mean word confidence in [0, 1]; zero when the
	// engine does not report one.
	Confidence float64
}

// Engine recognizes one image at a time.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine amortizes setup over several images.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}
