// Package corpus loads recipe YAML collections from a directory tree or a
// .zip archive, such as the app's YAML export.
package corpus

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"

	"github.com/wudi/recipekit/recipe"
)

// Pattern selects recipe files inside a directory or archive.
const Pattern = "**/*.{yml,yaml}"

// Item is one record and the file it came from.
type Item struct {
	File   string
	Record recipe.Record
}

// FileError records a file that could not be decoded.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return e.File + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

type Corpus struct {
	Items []Item
	// Errors lists files skipped because they failed to decode.
	Errors []FileError
	// Files is the number of matching files found.
	Files int
}

// Records returns every record in load order.
func (c *Corpus) Records() []recipe.Record {
	out := make([]recipe.Record, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Record
	}
	return out
}

// Load reads path, which must be a directory or a .zip file. A file that
// fails to decode is recorded in Errors and skipped.
func Load(path string) (*Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadFS(os.DirFS(path), path)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		return loadFS(zr, "")
	}
	return nil, fmt.Errorf("%s: input must be a directory or a .zip file", path)
}

// Files lists the recipe files under root in lexical order, skipping
// macOS resource forks.
func Files(fsys fs.FS) ([]string, error) {
	names, err := doublestar.Glob(fsys, Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, "__MACOSX/") || strings.HasPrefix(filepath.Base(n), "._") {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func loadFS(fsys fs.FS, root string) (*Corpus, error) {
	names, err := Files(fsys)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	c := &Corpus{Files: len(names)}
	for _, name := range names {
		display := name
		if root != "" {
			display = filepath.Join(root, filepath.FromSlash(name))
		}
		recs, err := readRecords(fsys, name)
		if err != nil {
			c.Errors = append(c.Errors, FileError{File: display, Err: err})
			continue
		}
		for _, r := range recs {
			c.Items = append(c.Items, Item{File: display, Record: r})
		}
	}
	return c, nil
}

func readRecords(fsys fs.FS, name string) ([]recipe.Record, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return recipe.DecodeAll(data)
}
