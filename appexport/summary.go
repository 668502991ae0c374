package appexport

import (
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/wudi/recipekit/spreadsheet"
)

// Summary aggregates a built table. Averages only cover rows carrying the
// value; a zero count means the average is undefined.
type Summary struct {
	Recipes int

	AvgPrep, AvgCook, AvgCalories  float64
	PrepCount, CookCount, CalCount int
	WithTags, Cooked               int
}

func Summarize(rows []Row) Summary {
	var prep, cook, cal []float64
	s := Summary{Recipes: len(rows)}
	for _, r := range rows {
		if r.HasPrep {
			prep = append(prep, float64(r.Prep))
		}
		if r.HasCook {
			cook = append(cook, float64(r.Cook))
		}
		if r.HasCalories {
			cal = append(cal, r.Calories)
		}
		if r.Tagged {
			s.WithTags++
		}
		if r.Cooked {
			s.Cooked++
		}
	}
	s.PrepCount, s.CookCount, s.CalCount = len(prep), len(cook), len(cal)
	if len(prep) > 0 {
		s.AvgPrep = stat.Mean(prep, nil)
	}
	if len(cook) > 0 {
		s.AvgCook = stat.Mean(cook, nil)
	}
	if len(cal) > 0 {
		s.AvgCalories = stat.Mean(cal, nil)
	}
	return s
}

// Table renders the summary as metric/value pairs.
func (s Summary) Table() spreadsheet.Table {
	t := spreadsheet.Table{Header: []string{"metric", "value"}}
	t.Append("recipes", strconv.Itoa(s.Recipes))
	avg := func(name string, v float64, n int) {
		if n > 0 {
			t.Append(name, strconv.FormatFloat(v, 'f', 1, 64))
		}
	}
	avg("avg_prep_time_min", s.AvgPrep, s.PrepCount)
	avg("avg_cook_time_min", s.AvgCook, s.CookCount)
	avg("avg_calories", s.AvgCalories, s.CalCount)
	t.Append("recipes_with_tags", strconv.Itoa(s.WithTags))
	t.Append("recipes_cooked", strconv.Itoa(s.Cooked))
	return t
}

// Files are the paths written by Write.
type Files struct {
	Full, CSV, Simple string
}

// Write stores the full workbook (recipes plus a summary sheet), the CSV
// and the simple workbook under dir.
func Write(dir string, rows []Row) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, err
	}
	files := Files{
		Full:   filepath.Join(dir, FullName),
		CSV:    filepath.Join(dir, CSVName),
		Simple: filepath.Join(dir, SimpleName),
	}
	full := Table(rows, Columns)
	if err := spreadsheet.WriteXLSX(files.Full,
		spreadsheet.Sheet{Name: "Recipes", Table: full},
		spreadsheet.Sheet{Name: "Summary", Table: Summarize(rows).Table()},
	); err != nil {
		return files, err
	}
	if err := spreadsheet.WriteCSV(files.CSV, full); err != nil {
		return files, err
	}
	simple := spreadsheet.Sheet{Name: "Recipes", Table: Table(rows, SimpleColumns)}
	if err := spreadsheet.WriteXLSX(files.Simple, simple); err != nil {
		return files, err
	}
	return files, nil
}
