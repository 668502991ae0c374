// Package recipeparse turns free-form recipe text and Markdown into records.
package recipeparse

import (
	"regexp"
	"strings"

	"github.com/wudi/recipekit/recipe"
)

// UntitledRecipe is used when no title line can be found.
const UntitledRecipe = "Untitled Recipe"

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
	sectionNotes
	sectionTags
)

var sectionHeaders = []struct {
	re *regexp.Regexp
	s  section
}{
	{regexp.MustCompile(`(?i)^ingredients?(?:[:\s]|$)`), sectionIngredients},
	{regexp.MustCompile(`(?i)^(?:directions?|instructions?|method|steps|preparation)(?:[:\s]|$)`), sectionInstructions},
	{regexp.MustCompile(`(?i)^(?:notes?|tips?)(?:[:\s]|$)`), sectionNotes},
	{regexp.MustCompile(`(?i)^(?:tags?|keywords|categories)(?:[:\s]|$)`), sectionTags},
}

// headerSection reports the section a header line opens and any text that
// follows the header on the same line ("Ingredients: 2 eggs").
func headerSection(line string) (section, string, bool) {
	for _, h := range sectionHeaders {
		if loc := h.re.FindStringIndex(line); loc != nil {
			rest := strings.TrimSpace(strings.TrimLeft(line[loc[1]:], ": "))
			return h.s, rest, true
		}
	}
	return sectionNone, "", false
}

var (
	servesLine = regexp.MustCompile(`(?i)^(?:serves|servings|makes|yield)\s*:?\s*(\d+(?:\s*-\s*\d+)?)`)
	bullet     = regexp.MustCompile(`^(?:[-*•▪◦·]|\d+[.)])\s+`)
)

// stripBullet removes a list marker from the start of a line.
func stripBullet(line string) string {
	return strings.TrimSpace(bullet.ReplaceAllString(line, ""))
}

// ParseText extracts a record from plain text. The first line is the title
// unless it is itself a section header. "Ingredients" and
// "Directions"/"Instructions" headers delimit the lists; without them the
// lines following the title become the description, and when no ingredients
// were found the next four lines are used as ingredients.
func ParseText(text string) recipe.Record {
	lines := recipe.SplitLines(strings.ReplaceAll(text, "\r\n", "\n"))
	rec := recipe.Record{Title: UntitledRecipe}
	if len(lines) == 0 {
		return rec
	}

	firstHeader := -1
	for i, ln := range lines {
		if _, _, ok := headerSection(ln); ok {
			firstHeader = i
			break
		}
	}

	start := 0
	if firstHeader != 0 {
		rec.Title = lines[0]
		start = 1
	}

	descEnd := firstHeader
	if descEnd < 0 || descEnd-start > 2 {
		descEnd = min(start+2, len(lines))
	}
	var desc []string
	for _, ln := range lines[start:max(descEnd, start)] {
		if m := servesLine.FindStringSubmatch(ln); m != nil && rec.Servings == "" {
			rec.Servings = strings.ReplaceAll(m[1], " ", "")
			continue
		}
		desc = append(desc, ln)
	}
	rec.Description = strings.Join(desc, " ")

	cur := sectionNone
	var notes []string
	for i := start; i < len(lines); i++ {
		ln := lines[i]
		if s, rest, ok := headerSection(ln); ok {
			cur = s
			if rest == "" {
				continue
			}
			ln = rest
		}
		switch cur {
		case sectionIngredients:
			if m := servesLine.FindStringSubmatch(ln); m != nil {
				if rec.Servings == "" {
					rec.Servings = strings.ReplaceAll(m[1], " ", "")
				}
				continue
			}
			if item := stripBullet(ln); item != "" {
				rec.Ingredients = append(rec.Ingredients, item)
			}
		case sectionInstructions:
			if step := stripBullet(ln); step != "" {
				rec.Instructions = append(rec.Instructions, step)
			}
		case sectionNotes:
			notes = append(notes, ln)
		case sectionTags:
			rec.AddTags(recipe.SplitTags(ln)...)
		case sectionNone:
			if rec.Servings == "" {
				if m := servesLine.FindStringSubmatch(ln); m != nil {
					rec.Servings = strings.ReplaceAll(m[1], " ", "")
				}
			}
		}
	}
	rec.Notes = strings.Join(notes, "\n")

	if len(rec.Ingredients) == 0 && len(lines) > 4 {
		rec.Ingredients = append([]string(nil), lines[1:5]...)
	}
	rec.AddTags(recipe.DetectTags(strings.Join(lines, " "), recipe.CuisineVocabulary)...)
	return rec
}
