package urlclean

import (
	"errors"

	"github.com/wudi/recipekit/spreadsheet"
)

// ErrNoURLColumn is returned when the input table has no URL column.
var ErrNoURLColumn = errors.New("input has no 'recipe urls' column")

// Output file stems; each is written as .xlsx and .csv.
const (
	FullName   = "recipe_urls_cleaned"
	SimpleName = "recipe_urls_cleaned_simple"
)

// URLColumns are the accepted headers for the URL column, in priority order.
var URLColumns = []string{"recipe urls", "recipe url", "urls", "url", "link"}

type Entry struct {
	Source   string
	Original string
	Cleaned  string
	Site     string
	Name     string
}

type Stats struct {
	Total      int
	Cleaned    int
	Unchanged  int
	Duplicates int
	Unique     int
	Named      int
}

// Process cleans every URL in t, then drops later rows whose cleaned URL
// was already seen. Stats count rows before de-duplication, except Unique.
func Process(t spreadsheet.Table) ([]Entry, Stats, error) {
	urlCol := -1
	for _, name := range URLColumns {
		if urlCol = t.Column(name); urlCol >= 0 {
			break
		}
	}
	if urlCol < 0 {
		return nil, Stats{}, ErrNoURLColumn
	}
	srcCol := t.Column("source")

	var st Stats
	seen := make(map[string]bool)
	var out []Entry
	for _, row := range t.Rows {
		orig := spreadsheet.Value(row, urlCol)
		if orig == "" {
			continue
		}
		e := Entry{Source: spreadsheet.Value(row, srcCol), Original: orig, Cleaned: Clean(orig)}
		e.Site = SiteName(e.Cleaned)
		e.Name = RecipeName(e.Cleaned)

		st.Total++
		if e.Cleaned == orig {
			st.Unchanged++
		} else {
			st.Cleaned++
		}
		if e.Name != "" {
			st.Named++
		}
		if seen[e.Cleaned] {
			st.Duplicates++
			continue
		}
		seen[e.Cleaned] = true
		out = append(out, e)
	}
	st.Unique = len(out)
	return out, st, nil
}

// FullTable is the comparison layout: source, original and cleaned URL,
// site and recipe name.
func FullTable(entries []Entry) spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"source", "original_url", "cleaned_url", "site_name", "recipe_name_guess"}}
	for _, e := range entries {
		t.Append(e.Source, e.Original, e.Cleaned, e.Site, e.Name)
	}
	return t
}

// SimpleTable keeps only the cleaned URL, site and name.
func SimpleTable(entries []Entry) spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"url", "site", "recipe_name"}}
	for _, e := range entries {
		t.Append(e.Cleaned, e.Site, e.Name)
	}
	return t
}
