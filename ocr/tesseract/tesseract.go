// Package tesseract registers a gosseract-backed engine as the ocr default.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/recipekit/ocr"
)

func init() {
	ocr.SetDefaultEngine(New())
}

// ErrRegionOutside is returned when Input.Region misses the image entirely.
var ErrRegionOutside = errors.New("tesseract: region outside image bounds")

// Engine runs Tesseract through cgo. A fresh client is used per Recognize
// call; RecognizeBatch reuses one client for the whole batch.
type Engine struct {
	newClient func() *gosseract.Client
}

func New() *Engine {
	return &Engine{newClient: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.newClient()
	defer c.Close()
	return recognize(c, in)
}

func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	c := e.newClient()
	defer c.Close()

	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := recognize(c, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func recognize(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	data, err := crop(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	if err := c.SetLanguage(langs...); err != nil {
		return ocr.Result{}, fmt.Errorf("set languages: %w", err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Result{
		InputID:    in.ID,
		PlainText:  strings.TrimSpace(text),
		Confidence: wordConfidence(c),
	}, nil
}

// wordConfidence is the mean word confidence scaled to [0, 1].
func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func crop(data []byte, r *ocr.Region) ([]byte, error) {
	if r == nil || r.IsEmpty() {
		return data, nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, ErrRegionOutside
	}
	sub, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("tesseract: %T cannot be cropped", img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
