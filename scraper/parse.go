// Package scraper collects recipe titles and source links from the AnyList
// web app.
package scraper

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"

	"github.com/wudi/recipekit/spreadsheet"
)

// OutputName is the default CSV written by scrape-anylist.
const OutputName = "anylist_recipes.csv"

// Markers written instead of a URL.
const (
	NoURL       = "No URL found"
	ErrorPrefix = "Error: "
)

// cellSelector matches recipe rows: table cells carrying a thumbnail,
// which excludes category headers.
const cellSelector = "div.ALTableCell:has(div.ALTableCellImage)"

// Cell is one recipe row of the All Recipes list.
type Cell struct {
	Index int
	Title string
}

type Row struct {
	Title     string
	SourceURL string
}

var titlePolicy = bluemonday.StrictPolicy()

// ParseCells reads the recipe rows from the list markup. A row without
// text is titled "Recipe N".
func ParseCells(markup string) ([]Cell, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse recipe list: %w", err)
	}
	var cells []Cell
	doc.Find(cellSelector).Each(func(i int, s *goquery.Selection) {
		title := ""
		if lines := textLines(s); len(lines) > 0 {
			title = cleanTitle(lines[0])
		}
		if title == "" {
			title = fmt.Sprintf("Recipe %d", i+1)
		}
		cells = append(cells, Cell{Index: i, Title: title})
	})
	return cells, nil
}

// textLines returns the trimmed text nodes under s, in document order.
func textLines(s *goquery.Selection) []string {
	var lines []string
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		case xhtml.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return lines
}

func cleanTitle(s string) string {
	s = html.UnescapeString(titlePolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// SourceLink finds the recipe's source on a detail page: the "from <site>"
// link when present, otherwise the first external link.
func SourceLink(markup string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}
	var fallback string
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return true
		}
		if strings.Contains(strings.ToLower(a.Text()), "from ") {
			found = href
			return false
		}
		if fallback == "" && !strings.Contains(href, "anylist.com") {
			fallback = href
		}
		return true
	})
	if found == "" {
		found = fallback
	}
	return found, found != ""
}

// Table lays rows out as title, source_url.
func Table(rows []Row) spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"title", "source_url"}}
	for _, r := range rows {
		t.Append(r.Title, r.SourceURL)
	}
	return t
}
