// Package recipe defines the flat recipe record shared by every recipekit tool
// and its YAML and CSV encodings.
package recipe

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNoTitle       = errors.New("recipe has no title")
	ErrNoIngredients = errors.New("recipe has no ingredients")
)

// Record is a single recipe. Only Title is expected to be set; everything
// else is present or absent.
type Record struct {
	Title        string
	Source       string
	Servings     string
	Ingredients  []string
	Instructions []string
	Notes        string
	Tags         []string

	Description string
	Course      string
	PrepTime    string
	CookTime    string
	TotalTime   string
	Yield       string
	Rating      string
	PhotoURL    string
	Video       string
	CookCount   int
	Nutrition   map[string]string

	// Provenance for extracted records.
	SourceFile string
	Page       int
	Confidence float64
}

// Validate reports whether r carries enough content to be worth exporting.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrNoTitle
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) != "" {
			return nil
		}
	}
	return ErrNoIngredients
}

// NumericServings returns the servings as an integer when it is written
// as one, without sign or leading zeros.
func (r Record) NumericServings() (int, bool) {
	n, err := strconv.Atoi(r.Servings)
	if err != nil || strconv.Itoa(n) != r.Servings || n < 0 {
		return 0, false
	}
	return n, true
}

// AddTags appends tags not already present, case-insensitively.
func (r *Record) AddTags(tags ...string) {
	seen := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		seen[strings.ToLower(t)] = true
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		r.Tags = append(r.Tags, t)
	}
}

var slugSep = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a lowercase, hyphen separated file stem.
func Slugify(title string) string {
	return strings.Trim(slugSep.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// TagRule adds Tag when any of Keywords occurs in the text.
type TagRule struct {
	Tag      string
	Keywords []string
}

// Vocabulary builds one rule per word, each word tagging itself.
func Vocabulary(words ...string) []TagRule {
	rules := make([]TagRule, len(words))
	for i, w := range words {
		rules[i] = TagRule{Tag: w, Keywords: []string{w}}
	}
	return rules
}

// CuisineVocabulary is the default keyword list for free-form recipes.
var CuisineVocabulary = Vocabulary(
	"thai", "chinese", "vietnamese", "italian", "mexican", "indian",
	"soup", "stew", "stir-fry", "noodle", "pasta", "chicken", "beef",
	"pork", "vegan", "vegetarian", "dessert", "bake", "grill", "roast",
)

// DetectTags returns the sorted, de-duplicated tags whose keywords occur in
// text. Matching is a case-insensitive substring test.
func DetectTags(text string, rules []TagRule) []string {
	low := strings.ToLower(text)
	found := make(map[string]bool)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(low, strings.ToLower(kw)) {
				found[rule.Tag] = true
				break
			}
		}
	}
	tags := make([]string, 0, len(found))
	for t := range found {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// NutritionOrder lists the nutrition keys in the order the app displays them.
var NutritionOrder = []string{
	"calories", "fat", "saturated fat", "cholesterol", "sodium",
	"carbohydrate", "carbs", "fiber", "sugar", "protein",
}

// NutritionKeys returns the keys of n in display order, unknown keys last.
func NutritionKeys(n map[string]string) []string {
	keys := make([]string, 0, len(n))
	rank := make(map[string]int, len(NutritionOrder))
	for i, k := range NutritionOrder {
		rank[k] = i
	}
	for k := range n {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[strings.ToLower(keys[i])]
		rj, jok := rank[strings.ToLower(keys[j])]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

var nutritionPair = regexp.MustCompile(`([A-Za-z][A-Za-z ]*?)\s*:\s*([^,\n]+)`)

// ParseNutrition reads "Calories: 250, Fat: 10 g" or one pair per line.
func ParseNutrition(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range nutritionPair.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		val := strings.TrimSpace(m[2])
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitLines splits a newline-joined block into trimmed, non-empty lines.
func SplitLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// SplitTags splits a comma or semicolon separated tag list.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
