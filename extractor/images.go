package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func pdfcpuConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount reads the page count with pdfcpu, which tolerates documents the
// glyph reader rejects.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages %s: %w", path, err)
	}
	return n, nil
}

// ExtractImages writes the images embedded on the given zero-based pages
// (all pages when empty) into outDir and returns their paths. Files left by
// an earlier run under the same names are replaced and reported again.
func ExtractImages(path, outDir string, pages []int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	staging, err := os.MkdirTemp(outDir, ".extract-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	var selected []string
	for _, p := range pages {
		selected = append(selected, strconv.Itoa(p+1))
	}
	if err := api.ExtractImagesFile(path, staging, selected, pdfcpuConfig()); err != nil {
		return nil, fmt.Errorf("extract images %s: %w", path, err)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", staging, err)
	}
	var written []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		dst := filepath.Join(outDir, e.Name())
		if err := os.Rename(filepath.Join(staging, e.Name()), dst); err != nil {
			return written, fmt.Errorf("move %s: %w", e.Name(), err)
		}
		written = append(written, dst)
	}
	sort.Strings(written)
	return written, nil
}
