package ocr

import "strconv"

// Tesseract page segmentation modes useful for cookbook pages.
const (
	PSMSingleColumn = 4
	PSMSingleBlock  = 6
)

// WithTesseractPSM sets tessedit_pageseg_mode. Zero leaves Tesseract's default.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if mode <= 0 {
			return
		}
		meta := make(map[string]string, len(in.Metadata)+1)
		for k, v := range in.Metadata {
			meta[k] = v
		}
		meta["tessedit_pageseg_mode"] = strconv.Itoa(mode)
		in.Metadata = meta
	}
}
