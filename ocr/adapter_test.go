package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(1, 1, color.Gray{})
	return img
}

func TestInputFromImage(t *testing.T) {
	region := Region{X: 0, Y: 0, Width: 1, Height: 1}

	in, err := InputFromImage(
		testImage(4, 3), 2,
		WithLanguages("eng", "spa"),
		WithRegion(region),
		WithDPI(200),
		WithTesseractPSM(PSMSingleBlock),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	if in.Format != ImageFormatPNG || in.PageIndex != 2 || in.ID != "page-2" {
		t.Fatalf("unexpected input header: %+v", in)
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "spa"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.Region == nil || *in.Region != region {
		t.Fatalf("unexpected region: %#v", in.Region)
	}
	if in.DPI != 200 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	if in.Metadata["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("unexpected metadata: %+v", in.Metadata)
	}
	if in.Width != 4 || in.Height != 3 {
		t.Fatalf("unexpected size %dx%d", in.Width, in.Height)
	}

	img, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestInputFromImageScales(t *testing.T) {
	in, err := InputFromImage(testImage(10, 20), 0, WithDPI(200), WithScale(1.5))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 15 || b.Dy() != 30 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if in.DPI != 300 {
		t.Fatalf("dpi not scaled: %d", in.DPI)
	}
	if in.Width != 15 || in.Height != 30 {
		t.Fatalf("size not scaled: %dx%d", in.Width, in.Height)
	}
}

func TestSplitColumns(t *testing.T) {
	in, err := InputFromImage(testImage(100, 40), 3, WithDPI(200))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	left, right := SplitColumns(in, 0.25)
	if left.ID != "page-3-left" || right.ID != "page-3-right" {
		t.Fatalf("unexpected ids %q %q", left.ID, right.ID)
	}
	if *left.Region != (Region{X: 0, Y: 0, Width: 25, Height: 40}) {
		t.Fatalf("left region %+v", *left.Region)
	}
	if *right.Region != (Region{X: 25, Y: 0, Width: 75, Height: 40}) {
		t.Fatalf("right region %+v", *right.Region)
	}
	if left.Metadata["tessedit_pageseg_mode"] != "4" || right.Metadata["tessedit_pageseg_mode"] != "4" {
		t.Fatalf("columns should default to single column mode: %+v", left.Metadata)
	}
	if in.Region != nil || in.Metadata != nil {
		t.Fatalf("whole-page input was modified: %+v", in)
	}

	in, _ = InputFromImage(testImage(10, 10), 0, WithTesseractPSM(PSMSingleBlock))
	left, _ = SplitColumns(in, 2)
	if left.Region.Width != 5 || left.Metadata["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("bad split fallback or mode override: %+v %+v", *left.Region, left.Metadata)
	}
}

func TestWithRegionClearsEmpty(t *testing.T) {
	in := Input{Region: &Region{X: 1, Y: 1, Width: 2, Height: 2}}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("expected nil region for empty input, got %#v", in.Region)
	}
}

type countingEngine struct {
	calls int
	err   error
}

func (c *countingEngine) Name() string { return "counting" }

func (c *countingEngine) Recognize(_ context.Context, in Input) (Result, error) {
	c.calls++
	if c.err != nil {
		return Result{}, c.err
	}
	return Result{InputID: in.ID, PlainText: "text for " + in.ID}, nil
}

func TestCachedEngine(t *testing.T) {
	next := &countingEngine{}
	cached, err := NewCachedEngine(next, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	a, _ := InputFromImage(testImage(4, 4), 1)
	b, _ := InputFromImage(testImage(4, 4), 7)
	c, _ := InputFromImage(testImage(5, 4), 1)

	if _, err := cached.Recognize(ctx, a); err != nil {
		t.Fatalf("recognize: %v", err)
	}
	res, err := cached.Recognize(ctx, b)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("identical image recognized %d times", next.calls)
	}
	if res.InputID != "page-7" || res.PlainText != "text for page-1" {
		t.Fatalf("unexpected cached result: %+v", res)
	}
	if _, err := cached.Recognize(ctx, c); err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if next.calls != 2 || cached.Len() != 2 {
		t.Fatalf("calls=%d len=%d", next.calls, cached.Len())
	}
	if cached.Name() != "counting" {
		t.Fatalf("name = %q", cached.Name())
	}

	boom := errors.New("boom")
	failing, _ := NewCachedEngine(&countingEngine{err: boom}, 1)
	if _, err := failing.Recognize(ctx, a); !errors.Is(err, boom) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if failing.Len() != 0 {
		t.Fatal("errors must not be cached")
	}
}

type batchEngine struct {
	countingEngine
	batches [][]string
}

func (b *batchEngine) RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	var ids []string
	out := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ID)
		res, _ := b.Recognize(ctx, in)
		out = append(out, res)
	}
	b.batches = append(b.batches, ids)
	return out, nil
}

func TestCachedEngineBatch(t *testing.T) {
	next := &batchEngine{}
	cached, err := NewCachedEngine(next, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	page, _ := InputFromImage(testImage(8, 8), 0)
	left, right := SplitColumns(page, 0.5)

	res, err := RecognizeAll(ctx, cached, []Input{left, right})
	if err != nil || len(res) != 2 {
		t.Fatalf("RecognizeAll = %+v, %v", res, err)
	}
	if !reflect.DeepEqual(next.batches, [][]string{{"page-0-left", "page-0-right"}}) {
		t.Fatalf("batches = %v", next.batches)
	}

	again, _ := InputFromImage(testImage(8, 8), 5)
	l2, r2 := SplitColumns(again, 0.5)
	res, err = RecognizeAll(ctx, cached, []Input{l2, r2})
	if err != nil {
		t.Fatalf("RecognizeAll: %v", err)
	}
	if len(next.batches) != 1 || next.calls != 2 {
		t.Fatalf("identical render reached the engine again: batches=%v calls=%d", next.batches, next.calls)
	}
	if res[0].InputID != "page-5-left" || res[1].PlainText != "text for page-0-right" {
		t.Fatalf("unexpected cached results: %+v", res)
	}
}

func TestRecognizeAllAndDefault(t *testing.T) {
	if Available(DefaultEngine()) {
		t.Fatal("default engine should be the no-op engine without a registered provider")
	}
	next := &countingEngine{}
	in1, _ := InputFromImage(testImage(2, 2), 0)
	in2, _ := InputFromImage(testImage(2, 2), 1)
	res, err := RecognizeAll(context.Background(), next, []Input{in1, in2})
	if err != nil || len(res) != 2 || res[1].InputID != "page-1" {
		t.Fatalf("RecognizeAll = %+v, %v", res, err)
	}
	if !Available(next) {
		t.Fatal("counting engine should be available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RecognizeAll(ctx, next, []Input{in1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestSplitHalves(t *testing.T) {
	left, right := SplitHalves("a\nb\nc\nd\ne")
	if left != "a\nb" || right != "c\nd\ne" {
		t.Fatalf("split = %q / %q", left, right)
	}
	left, right = SplitHalves("")
	if left != "" || right != "" {
		t.Fatalf("empty split = %q / %q", left, right)
	}
}
