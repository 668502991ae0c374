package cookbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wudi/recipekit/extractor"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
)

// ImagesDir is the subdirectory of the output directory holding page images.
const ImagesDir = "images"

// AttachImages extracts the images embedded in each record's page into
// <outDir>/images and points PhotoURL at the first one. It returns the
// number of files written. Failures on a single page are logged.
func AttachImages(pdfPath, outDir string, records []recipe.Record, log observability.Logger) (int, error) {
	log = observability.OrNop(log)
	dir := filepath.Join(outDir, ImagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}
	total := 0
	for i := range records {
		rec := &records[i]
		if rec.Page <= 0 {
			continue
		}
		files, err := extractor.ExtractImages(pdfPath, dir, []int{rec.Page - 1})
		if err != nil {
			log.Warn("image extraction failed", observability.Int(observability.KeyPage, rec.Page), observability.Err(err))
			continue
		}
		total += len(files)
		if len(files) == 0 || rec.PhotoURL != "" {
			continue
		}
		rec.PhotoURL = filepath.ToSlash(filepath.Join(ImagesDir, filepath.Base(files[0])))
	}
	return total, nil
}
