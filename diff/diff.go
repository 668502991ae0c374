// Package diff compares a local recipe collection against the app's export
// and reports which local recipes are still missing from the app.
package diff

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/wudi/recipekit/spreadsheet"
	"github.com/wudi/recipekit/urlclean"
)

// Output file stems; each is written as .xlsx and .csv.
const (
	MissingName = "recipes_missing_from_cookbook"
	AlreadyName = "recipes_already_in_cookbook"
)

// MinLengthRatio guards fuzzy title matches: the shorter title must be at
// least this fraction of the longer one.
const MinLengthRatio = 0.85

// Match reasons.
const (
	ByURL   = "url"
	ByTitle = "title"
	ByFuzzy = "fuzzy"
)

// Entry is one recipe on either side of the comparison.
type Entry struct {
	Title string
	URL   string
	Site  string
}

// Outcome is a local entry and, when found, the export entry it matched.
type Outcome struct {
	Entry
	By      string
	Matched string
}

type Result struct {
	Missing []Outcome
	Already []Outcome
}

// NormalizeURL reduces u to host (without "www.") plus the lower-cased path
// without a trailing slash. Query and fragment are ignored. It returns ""
// when u has no host.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	p, err := url.Parse(u)
	if err != nil || p.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(p.Hostname()), "www.")
	return host + strings.TrimRight(strings.ToLower(p.Path), "/")
}

var (
	pageSuffix = regexp.MustCompile(`(?i)\s*\(page\s*\d+\)\s*$`)
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeTitle lower-cases t, drops a "(Page N)" suffix, and collapses
// punctuation and spacing to single spaces.
func NormalizeTitle(t string) string {
	t = pageSuffix.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "'", "")
	t = strings.ReplaceAll(t, "’", "")
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(t), " "))
}

type index struct {
	urls   map[string]string
	titles map[string]string
	// names holds normalized titles for fuzzy search; display is parallel.
	names   []string
	display []string
}

func newIndex(export []Entry) *index {
	ix := &index{urls: make(map[string]string), titles: make(map[string]string)}
	for _, e := range export {
		if u := NormalizeURL(e.URL); u != "" {
			if _, ok := ix.urls[u]; !ok {
				ix.urls[u] = e.Title
			}
		}
		t := NormalizeTitle(e.Title)
		if t == "" {
			continue
		}
		if _, ok := ix.titles[t]; !ok {
			ix.titles[t] = e.Title
			ix.names = append(ix.names, t)
			ix.display = append(ix.display, e.Title)
		}
	}
	return ix
}

func (ix *index) lookup(e Entry) (by, matched string, ok bool) {
	if u := NormalizeURL(e.URL); u != "" {
		if m, ok := ix.urls[u]; ok {
			return ByURL, m, true
		}
	}
	t := NormalizeTitle(e.Title)
	if t == "" {
		return "", "", false
	}
	if m, ok := ix.titles[t]; ok {
		return ByTitle, m, true
	}
	for _, m := range fuzzy.Find(t, ix.names) {
		if lengthRatio(t, m.Str) >= MinLengthRatio {
			return ByFuzzy, ix.display[m.Index], true
		}
	}
	// The local title may be the longer one.
	target := []string{t}
	for i, name := range ix.names {
		if lengthRatio(t, name) < MinLengthRatio {
			continue
		}
		if len(fuzzy.Find(name, target)) > 0 {
			return ByFuzzy, ix.display[i], true
		}
	}
	return "", "", false
}

func lengthRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	return float64(min(la, lb)) / float64(max(la, lb))
}

// Compare classifies every local entry as missing from or already in the
// export. Both lists are sorted by site, then title.
func Compare(local, export []Entry) Result {
	ix := newIndex(export)
	var res Result
	for _, e := range local {
		if by, m, ok := ix.lookup(e); ok {
			res.Already = append(res.Already, Outcome{Entry: e, By: by, Matched: m})
			continue
		}
		res.Missing = append(res.Missing, Outcome{Entry: e})
	}
	sortOutcomes(res.Missing)
	sortOutcomes(res.Already)
	return res
}

func sortOutcomes(out []Outcome) {
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := strings.ToLower(out[i].Site), strings.ToLower(out[j].Site)
		if si != sj {
			return si < sj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
}

// SiteCount is the number of entries for one site.
type SiteCount struct {
	Site  string
	Count int
}

// BySite counts outcomes per site, largest first. Entries without a site
// are counted under "(unknown)".
func BySite(out []Outcome) []SiteCount {
	counts := make(map[string]int)
	for _, o := range out {
		site := o.Site
		if site == "" {
			site = "(unknown)"
		}
		counts[site]++
	}
	list := make([]SiteCount, 0, len(counts))
	for s, n := range counts {
		list = append(list, SiteCount{Site: s, Count: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Site < list[j].Site
	})
	return list
}

// MissingTable uses the URL list columns so the file feeds cookbook-autoimport.
func MissingTable(out []Outcome) spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"cleaned_url", "recipe_name_guess", "site_name"}}
	for _, o := range out {
		t.Append(o.URL, o.Title, o.Site)
	}
	return t
}

func AlreadyTable(out []Outcome) spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"cleaned_url", "recipe_name_guess", "site_name", "matched_by", "matched_title"}}
	for _, o := range out {
		t.Append(o.URL, o.Title, o.Site, o.By, o.Matched)
	}
	return t
}

func siteFor(u string) string {
	if u == "" {
		return ""
	}
	return urlclean.SiteName(u)
}
