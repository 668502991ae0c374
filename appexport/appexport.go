// Package appexport flattens recipe records into the spreadsheet layout used
// for reviewing a cookbook export.
package appexport

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/spreadsheet"
	"github.com/wudi/recipekit/urlclean"
)

// Output names.
const (
	FullName   = "cookbook_recipes.xlsx"
	CSVName    = "cookbook_recipes.csv"
	SimpleName = "cookbook_recipes_simple.xlsx"
)

// Columns is the full layout: the record fields first, derived values after.
var Columns = []string{
	"title", "source", "servings", "ingredients", "instructions", "notes", "tags",
	"description", "source_url_original",
	"prep_time_min", "cook_time_min", "total_time_min",
	"calories", "fat_g", "saturated_fat_g", "carbs_g", "sugar_g",
	"fiber_g", "protein_g", "sodium_mg", "cholesterol_mg",
	"ingredient_count", "step_count", "video_url", "cook_count",
}

// SimpleColumns is the quick-review subset.
var SimpleColumns = []string{
	"title", "description", "servings", "source",
	"prep_time_min", "cook_time_min", "total_time_min", "tags",
	"calories", "protein_g", "carbs_g", "fat_g",
	"ingredient_count", "step_count", "cook_count",
}

// nutrients maps a derived column to the nutrition keys that feed it.
var nutrients = []struct {
	column string
	keys   []string
}{
	{"calories", []string{"calories", "energy"}},
	{"fat_g", []string{"fat", "total fat"}},
	{"saturated_fat_g", []string{"saturated fat", "saturated"}},
	{"carbs_g", []string{"carbs", "carbohydrate", "carbohydrates", "total carbohydrate"}},
	{"sugar_g", []string{"sugar", "sugars"}},
	{"fiber_g", []string{"fiber", "dietary fiber", "fibre"}},
	{"protein_g", []string{"protein"}},
	{"sodium_mg", []string{"sodium"}},
	{"cholesterol_mg", []string{"cholesterol"}},
}

// Row is one record in spreadsheet form. Values are keyed by column name;
// numeric values are also kept for the summary.
type Row struct {
	Values map[string]string

	Prep, Cook, Total int
	HasPrep, HasCook  bool
	Calories          float64
	HasCalories       bool
	Tagged, Cooked    bool
}

// quantity is a mixed fraction ("1 1/2"), a fraction ("3/4") or a decimal
// ("1.5"), captured as whole, numerator, denominator and decimal.
const quantity = `(?:(?:(\d+)\s+)?(\d+)/(\d+)|(\d+(?:\.\d+)?))`

var (
	hoursRe   = regexp.MustCompile(quantity + `\s*H`)
	minutesRe = regexp.MustCompile(quantity + `\s*M`)
	numberRe  = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// Minutes converts an ISO-8601 duration such as "PT1H30M" to minutes. Plain
// "1 hour 30 min" text is read the same way. It reports false when s
// carries neither hours nor minutes.
func Minutes(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "P") {
		if _, timePart, ok := strings.Cut(s, "T"); ok {
			s = timePart
		}
	}
	total, found := 0.0, false
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		total += amount(m) * 60
		found = true
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		total += amount(m)
		found = true
	}
	return int(math.Round(total)), found
}

// amount reads a quantity submatch.
func amount(m []string) float64 {
	if m[4] != "" {
		v, _ := strconv.ParseFloat(m[4], 64)
		return v
	}
	num, _ := strconv.ParseFloat(m[2], 64)
	den, _ := strconv.ParseFloat(m[3], 64)
	v := 0.0
	if den != 0 {
		v = num / den
	}
	if m[1] != "" {
		whole, _ := strconv.ParseFloat(m[1], 64)
		v += whole
	}
	return v
}

// Nutrient returns the first number stored under any of keys.
func Nutrient(n map[string]string, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := n[k]
		if !ok {
			continue
		}
		if m := numberRe.FindString(v); m != "" {
			f, err := strconv.ParseFloat(m, 64)
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// IngredientCount ignores blank lines and section headings ending in ":".
func IngredientCount(items []string) int {
	n := 0
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" && !strings.HasSuffix(it, ":") {
			n++
		}
	}
	return n
}

func stepCount(steps []string) int {
	n := 0
	for _, s := range steps {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// Flatten converts one record.
func Flatten(r recipe.Record) Row {
	row := Row{Values: map[string]string{
		"title":               r.Title,
		"source":              urlclean.Clean(r.Source),
		"servings":            r.Servings,
		"ingredients":         strings.Join(r.Ingredients, "\n"),
		"instructions":        strings.Join(r.Instructions, "\n"),
		"notes":               r.Notes,
		"tags":                strings.Join(r.Tags, ", "),
		"description":         r.Description,
		"source_url_original": r.Source,
		"ingredient_count":    strconv.Itoa(IngredientCount(r.Ingredients)),
		"step_count":          strconv.Itoa(stepCount(r.Instructions)),
		"video_url":           r.Video,
		"cook_count":          strconv.Itoa(r.CookCount),
	}}

	row.Prep, row.HasPrep = Minutes(r.PrepTime)
	row.Cook, row.HasCook = Minutes(r.CookTime)
	if row.HasPrep {
		row.Values["prep_time_min"] = strconv.Itoa(row.Prep)
	}
	if row.HasCook {
		row.Values["cook_time_min"] = strconv.Itoa(row.Cook)
	}
	switch {
	case row.HasPrep || row.HasCook:
		row.Total = row.Prep + row.Cook
		row.Values["total_time_min"] = strconv.Itoa(row.Total)
	default:
		if t, ok := Minutes(r.TotalTime); ok {
			row.Total = t
			row.Values["total_time_min"] = strconv.Itoa(t)
		}
	}

	nutrition := lowerKeys(r.Nutrition)
	for _, n := range nutrients {
		v, ok := Nutrient(nutrition, n.keys...)
		if !ok {
			continue
		}
		row.Values[n.column] = strconv.FormatFloat(v, 'f', -1, 64)
		if n.column == "calories" {
			row.Calories, row.HasCalories = v, true
		}
	}
	row.Tagged = len(r.Tags) > 0
	row.Cooked = r.CookCount > 0
	return row
}

func lowerKeys(n map[string]string) map[string]string {
	out := make(map[string]string, len(n))
	for k, v := range n {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// Build flattens records and sorts the rows by title. Every record yields
// exactly one row.
func Build(records []recipe.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Flatten(r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Values["title"], rows[j].Values["title"]
		if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
			return la < lb
		}
		return a < b
	})
	return rows
}

// Table lays rows out under columns.
func Table(rows []Row, columns []string) spreadsheet.Table {
	t := spreadsheet.Table{Header: append([]string(nil), columns...)}
	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = r.Values[c]
		}
		t.Append(cells...)
	}
	return t
}
