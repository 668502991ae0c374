package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/recipekit/corpus"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/spreadsheet"
	"github.com/wudi/recipekit/urlclean"
)

// Column headers accepted when a side is a spreadsheet, in priority order.
var (
	URLColumns   = []string{"cleaned_url", "source_url", "source", "url", "recipe urls", "original_url"}
	TitleColumns = []string{"title", "name", "recipe_name_guess", "recipe_name"}
	SiteColumns  = []string{"site_name", "site"}
)

// Load reads one side of the comparison. Directories and .zip files are
// YAML corpora; .xlsx and .csv files are tables. YAML files that fail to
// decode are logged and skipped.
func Load(path string, log observability.Logger) ([]Entry, error) {
	log = observability.OrNop(log)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() || strings.EqualFold(filepath.Ext(path), ".zip") {
		c, err := corpus.Load(path)
		if err != nil {
			return nil, err
		}
		for _, fe := range c.Errors {
			log.Warn("skipping unreadable recipe file", observability.String(observability.KeyFile, fe.File), observability.Err(fe.Err))
		}
		return FromRecords(c.Records()), nil
	}
	t, err := spreadsheet.Read(path)
	if err != nil {
		return nil, err
	}
	entries, err := FromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// FromRecords converts records, deriving the site from the source URL.
func FromRecords(recs []recipe.Record) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, Entry{Title: r.Title, URL: r.Source, Site: siteFor(r.Source)})
	}
	return out
}

// FromTable converts a URL list or an exported recipe table. A table needs
// a URL or a title column.
func FromTable(t spreadsheet.Table) ([]Entry, error) {
	urlCol := firstColumn(t, URLColumns)
	titleCol := firstColumn(t, TitleColumns)
	siteCol := firstColumn(t, SiteColumns)
	if urlCol < 0 && titleCol < 0 {
		return nil, fmt.Errorf("no url or title column in %v", t.Header)
	}
	var out []Entry
	for _, row := range t.Rows {
		e := Entry{
			URL:   spreadsheet.Value(row, urlCol),
			Title: spreadsheet.Value(row, titleCol),
			Site:  spreadsheet.Value(row, siteCol),
		}
		if e.URL == "" && e.Title == "" {
			continue
		}
		if e.Title == "" {
			e.Title = urlclean.RecipeName(e.URL)
		}
		if e.Site == "" {
			e.Site = siteFor(e.URL)
		}
		out = append(out, e)
	}
	return out, nil
}

func firstColumn(t spreadsheet.Table, names []string) int {
	for _, n := range names {
		if i := t.Column(n); i >= 0 {
			return i
		}
	}
	return -1
}

// Write stores both result tables under dir as .xlsx and .csv and returns
// the paths written.
func Write(dir string, res Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, out := range []struct {
		name  string
		sheet string
		table spreadsheet.Table
	}{
		{MissingName, "Missing", MissingTable(res.Missing)},
		{AlreadyName, "Already", AlreadyTable(res.Already)},
	} {
		xlsx := filepath.Join(dir, out.name+".xlsx")
		if err := spreadsheet.WriteXLSX(xlsx, spreadsheet.Sheet{Name: out.sheet, Table: out.table}); err != nil {
			return paths, err
		}
		csvPath := filepath.Join(dir, out.name+".csv")
		if err := spreadsheet.WriteCSV(csvPath, out.table); err != nil {
			return paths, err
		}
		paths = append(paths, xlsx, csvPath)
	}
	return paths, nil
}

// Records turns entries into import records carrying a title and source.
func Records(entries []Entry) []recipe.Record {
	out := make([]recipe.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, recipe.Record{Title: e.Title, Source: e.URL})
	}
	return out
}
