package cookbook

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/textclean"
)

// UntitledRecipe is used when a page has no uppercase heading.
const UntitledRecipe = "Untitled Recipe"

// Tags is the keyword table applied to title, description and directions.
var Tags = []recipe.TagRule{
	{Tag: "thai", Keywords: []string{"thai", "curry"}},
	{Tag: "chinese", Keywords: []string{"chinese", "soy", "lo mein"}},
	{Tag: "quick", Keywords: []string{"quick", "minute", "easy"}},
	{Tag: "vegetarian", Keywords: []string{"vegetarian", "tofu"}},
}

var (
	servesRe     = regexp.MustCompile(`(?i)\b(?:SERVES|MAKES)\s+(\d+(?:[ \t]*(?:-|to)[ \t]*\d+)?(?:[ \t]+\d+/\d+|/\d+)?)`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	headingRe    = regexp.MustCompile(`^[#\d:\-\sA-Z&'’,.()/]+$`)
	numberingRe  = regexp.MustCompile(`^#?\s*\d*[:\-]?\s*`)
	leakedRe     = regexp.MustCompile(`\b(?:It|As|Despite)\b.*`)
	stepRe       = regexp.MustCompile(`(?i)^(?:In a|Add|Heat|Pour|Mix|Whisk|Combine|Cook|Meanwhile|Stir|Serve|Transfer|Preheat)\b`)
	hyphenBreak  = regexp.MustCompile(`(\w)-\n\s*(\w)`)
	yieldLineRe  = regexp.MustCompile(`(?i)^(?:SERVES|MAKES|YIELD)`)
	unkBulletRe  = regexp.MustCompile(`^` + regexp.QuoteMeta(textclean.Unknown) + `\s*`)
	quantityLike = regexp.MustCompile(`[0-9/]`)
)

// Page is the cleaned column text of one recipe page.
type Page struct {
	Index       int // zero-based
	Left, Right string
	OCR         bool
	GarbleScore float64
}

// Parse applies the cookbook layout heuristics: ingredients and servings in
// the left column, an uppercase title, a description and the directions in
// the right column.
func Parse(p Page, source string, footer *regexp.Regexp) recipe.Record {
	left := textclean.StripFooter(p.Left, footer)
	right := textclean.StripFooter(p.Right, footer)

	rec := recipe.Record{Source: source, Page: p.Index + 1}
	if m := servesRe.FindStringSubmatch(left); m != nil {
		rec.Servings = strings.Join(strings.Fields(m[1]), " ")
	}

	lines := recipe.SplitLines(right)
	titleLines := make(map[int]bool)
	var title []string
	for i, ln := range lines {
		if lowerRe.MatchString(ln) {
			break
		}
		if headingRe.MatchString(ln) {
			titleLines[i] = true
			title = append(title, ln)
		}
	}
	rec.Title = cleanTitle(strings.Join(title, " "))

	var desc []string
	var steps []string
	inSteps := false
	for i, ln := range lines {
		if titleLines[i] {
			continue
		}
		trigger := stepRe.MatchString(ln)
		if trigger {
			inSteps = true
		}
		switch {
		case !inSteps:
			desc = append(desc, ln)
		case trigger || len(steps) == 0:
			steps = append(steps, ln)
		default:
			steps[len(steps)-1] += " " + ln
		}
	}
	rec.Description = strings.Join(desc, " ")
	rec.Instructions = steps
	rec.Ingredients = ingredients(left)

	rec.Tags = recipe.DetectTags(rec.Title+" "+rec.Description+" "+strings.Join(steps, " "), Tags)
	rec.Title = fmt.Sprintf("%s (Page %d)", rec.Title, p.Index+1)
	return rec
}

func cleanTitle(s string) string {
	s = numberingRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(leakedRe.ReplaceAllString(s, ""))
	if s == "" {
		return UntitledRecipe
	}
	return s
}

// ingredients reads the left column one item per line. Hyphenated line
// breaks are rejoined and short fragments without a quantity continue the
// previous item.
func ingredients(left string) []string {
	left = hyphenBreak.ReplaceAllString(left, "$1$2")
	var out []string
	for _, ln := range strings.Split(left, "\n") {
		ln = strings.Trim(ln, "•· \t")
		ln = strings.TrimSpace(strings.TrimPrefix(ln, "- "))
		if ln == "" || yieldLineRe.MatchString(ln) {
			continue
		}
		ln = unkBulletRe.ReplaceAllString(ln, "")
		if ln == "" {
			continue
		}
		if len(out) > 0 && !quantityLike.MatchString(ln) && len(strings.Fields(ln)) < 3 {
			out[len(out)-1] += " " + ln
			continue
		}
		out = append(out, ln)
	}
	return out
}
