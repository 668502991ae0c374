// Package export writes extracted records to the output directory in the
// formats the app imports: one YAML file per recipe, a combined YAML
// sequence, the reference CSV layout and a plain text digest.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wudi/recipekit/recipe"
)

const (
	CSVName    = "recipes_export.csv"
	YAMLName   = "recipes_export.yml"
	TextName   = "recipes_export.txt"
	ReviewName = "recipes_review.csv"
)

// Separator ends every recipe in the text digest.
var Separator = strings.Repeat("-", 25)

// Slugger hands out file stems that are unique within one run.
type Slugger struct {
	used map[string]bool
}

func NewSlugger() *Slugger { return &Slugger{used: make(map[string]bool)} }

// Next returns the slug of title, "recipe-<index+1>" when the title has no
// usable characters, with the lowest free "-2", "-3"... appended when the
// stem was already handed out.
func (s *Slugger) Next(title string, index int) string {
	base := recipe.Slugify(title)
	if base == "" {
		base = "recipe-" + strconv.Itoa(index+1)
	}
	slug := base
	for n := 2; s.used[slug]; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	s.used[slug] = true
	return slug
}

// WriteYAMLFiles writes each record to <dir>/<slug>.yml and returns the
// paths in record order.
func WriteYAMLFiles(dir string, records []recipe.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	slugs := NewSlugger()
	paths := make([]string, 0, len(records))
	for i, r := range records {
		path := filepath.Join(dir, slugs.Next(r.Title, i)+".yml")
		if err := recipe.WriteFile(path, r); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCombinedYAML writes all records as one YAML sequence.
func WriteCombinedYAML(path string, records []recipe.Record) error {
	data, err := recipe.EncodeAll(records)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteCSVFile writes records in the app's reference CSV layout.
func WriteCSVFile(path string, records []recipe.Record) error {
	return writeFile(path, func(w io.Writer) error { return recipe.WriteCSV(w, records) })
}

// WriteText writes the human readable digest.
func WriteText(w io.Writer, records []recipe.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		fmt.Fprintf(bw, "%s\n%s\n", r.Title, strings.Repeat("-", len([]rune(r.Title))))
		if len(r.Ingredients) > 0 {
			fmt.Fprintf(bw, "Ingredients:\n%s\n\n", strings.Join(r.Ingredients, "\n"))
		}
		if len(r.Instructions) > 0 {
			fmt.Fprintf(bw, "Directions:\n%s\n\n", strings.Join(r.Instructions, "\n"))
		}
		if r.SourceFile != "" {
			fmt.Fprintf(bw, "Source File: %s (page %d)\n", r.SourceFile, r.Page)
		}
		fmt.Fprintln(bw, Separator)
	}
	return bw.Flush()
}

func WriteTextFile(path string, records []recipe.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteText(w, records) })
}

// ReviewColumns extends the reference layout with provenance so low
// confidence extractions can be traced back to their page.
var ReviewColumns = append(append([]string(nil), recipe.Columns...), "Source File", "Page", "Confidence")

// WriteReviewCSV writes records that need a human look. Nothing is written
// for an empty slice.
func WriteReviewCSV(path string, records []recipe.Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}
	err := writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(ReviewColumns); err != nil {
			return err
		}
		for _, r := range records {
			row := append(recipe.Row(r), r.SourceFile, strconv.Itoa(r.Page), strconv.FormatFloat(r.Confidence, 'f', 2, 64))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	return err == nil, err
}

// Bundle is the set of files written for one extraction run.
type Bundle struct {
	CSV, YAML, Text, Review string
	Files                   []string
}

// Options selects the optional outputs of WriteAll.
type Options struct {
	PerRecordYAML bool
	Combined      bool
	Text          bool
}

// WriteAll writes records and review into dir according to opts. The CSV
// is always written.
func WriteAll(dir string, records, review []recipe.Record, opts Options) (Bundle, error) {
	var b Bundle
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return b, fmt.Errorf("create %s: %w", dir, err)
	}
	if opts.PerRecordYAML {
		files, err := WriteYAMLFiles(dir, records)
		b.Files = files
		if err != nil {
			return b, err
		}
	}
	b.CSV = filepath.Join(dir, CSVName)
	if err := WriteCSVFile(b.CSV, records); err != nil {
		return b, err
	}
	if opts.Combined {
		b.YAML = filepath.Join(dir, YAMLName)
		if err := WriteCombinedYAML(b.YAML, records); err != nil {
			return b, err
		}
	}
	if opts.Text {
		b.Text = filepath.Join(dir, TextName)
		if err := WriteTextFile(b.Text, records); err != nil {
			return b, err
		}
	}
	path := filepath.Join(dir, ReviewName)
	ok, err := WriteReviewCSV(path, review)
	if err != nil {
		return b, err
	}
	if ok {
		b.Review = path
	}
	return b, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
