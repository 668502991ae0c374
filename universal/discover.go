package universal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// ProcessedDir receives PDFs once they have been imported.
const ProcessedDir = "processed"

// ErrUnsupported is returned for files whose type cannot be imported.
var ErrUnsupported = errors.New("unsupported file type")

// Kind is the parser a file is routed to.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindText
	KindMarkdown
	KindCSV
	KindYAML
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	case KindMarkdown:
		return "markdown"
	case KindCSV:
		return "csv"
	case KindYAML:
		return "yaml"
	}
	return "unknown"
}

var extKinds = map[string]Kind{
	".pdf":      KindPDF,
	".txt":      KindText,
	".text":     KindText,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".csv":      KindCSV,
	".yml":      KindYAML,
	".yaml":     KindYAML,
}

// DetectKind routes by extension and sniffs the content when the extension
// is unknown.
func DetectKind(p string) (Kind, error) {
	if k, ok := extKinds[strings.ToLower(filepath.Ext(p))]; ok {
		return k, nil
	}
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return KindUnknown, fmt.Errorf("detect %s: %w", p, err)
	}
	switch {
	case m.Is("application/pdf"):
		return KindPDF, nil
	case m.Is("text/csv"):
		return KindCSV, nil
	case m.Is("text/plain"):
		return KindText, nil
	}
	return KindUnknown, fmt.Errorf("%s (%s): %w", p, m.String(), ErrUnsupported)
}

// Discover lists the files under inbox whose slash separated, lower-cased
// relative path matches one of the include patterns. The processed
// directory is never descended into. Results are in lexical order.
func Discover(inbox string, include []string) ([]string, error) {
	for _, pat := range include {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("bad include pattern %q", pat)
		}
	}
	var out []string
	err := fs.WalkDir(os.DirFS(inbox), ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && (d.Name() == ProcessedDir || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if matchAny(include, strings.ToLower(rel)) {
			out = append(out, filepath.Join(inbox, filepath.FromSlash(rel)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", inbox, err)
	}
	return out, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		pat = strings.ToLower(pat)
		if !strings.Contains(pat, "/") {
			if ok, _ := doublestar.Match(pat, path.Base(rel)); ok && !strings.Contains(rel, "/") {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// MoveProcessed moves file into <inbox>/processed and returns the new path.
func MoveProcessed(inbox, file string) (string, error) {
	dir := filepath.Join(inbox, ProcessedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	dst := filepath.Join(dir, filepath.Base(file))
	if err := os.Rename(file, dst); err != nil {
		return "", fmt.Errorf("move %s: %w", file, err)
	}
	return dst, nil
}
