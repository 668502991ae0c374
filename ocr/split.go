package ocr

import "strings"

// SplitHalves is the fallback column split for OCR output that is not
// column aware: the first half of the lines become the left column.
func SplitHalves(text string) (left, right string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	mid := len(lines) / 2
	return strings.Join(lines[:mid], "\n"), strings.Join(lines[mid:], "\n")
}

// SplitColumns derives two inputs from a whole-page input, one per column,
// cut at the fraction split of the image width. Both share the encoded
// image and read it as a single column unless a mode is already set.
func SplitColumns(in Input, split float64) (left, right Input) {
	if split <= 0 || split >= 1 {
		split = 0.5
	}
	x := float64(in.Width) * split
	h := float64(in.Height)

	column := func(suffix string, r Region) Input {
		out := in
		out.ID = in.ID + "-" + suffix
		WithRegion(r)(&out)
		if _, ok := in.Metadata["tessedit_pageseg_mode"]; !ok {
			WithTesseractPSM(PSMSingleColumn)(&out)
		}
		return out
	}
	left = column("left", Region{X: 0, Y: 0, Width: x, Height: h})
	right = column("right", Region{X: x, Y: 0, Width: float64(in.Width) - x, Height: h})
	return left, right
}
