package recipe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Columns is the app's reference CSV import layout.
var Columns = []string{
	"Title", "Course", "Description", "Source", "Prep Time", "Cook Time", "Total Time",
	"Servings", "Yield", "Ingredients", "Directions", "Tags", "Rating", "Photo Url",
	"Calories", "Fat", "Cholesterol", "Sodium", "Sugar", "Carbohydrate", "Fiber",
	"Protein", "Cost", "Created At", "Updated At",
}

// Row flattens r into the Columns layout.
func Row(r Record) []string {
	n := func(k string) string { return r.Nutrition[k] }
	return []string{
		r.Title, r.Course, r.Description, r.Source, r.PrepTime, r.CookTime, r.TotalTime,
		r.Servings, r.Yield,
		strings.Join(r.Ingredients, "\n"),
		strings.Join(r.Instructions, "\n"),
		strings.Join(r.Tags, ";"),
		r.Rating, r.PhotoURL,
		n("calories"), n("fat"), n("cholesterol"), n("sodium"), n("sugar"),
		n("carbohydrate"), n("fiber"), n("protein"),
		"", "", "",
	}
}

// WriteCSV writes records in the reference layout, header first.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Title, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// field identifies a Record field a CSV header maps to.
type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldSource
	fieldServings
	fieldIngredients
	fieldInstructions
	fieldNotes
	fieldTags
	fieldDescription
	fieldCourse
	fieldPrepTime
	fieldCookTime
	fieldTotalTime
	fieldYield
	fieldRating
	fieldPhoto
	fieldNutrition
	fieldSourceFile
	fieldPage
	fieldConfidence
)

// headerAliases maps normalized header text to a field.
var headerAliases = map[string]field{
	"title": fieldTitle, "name": fieldTitle, "recipe": fieldTitle, "recipename": fieldTitle,
	"recipetitle": fieldTitle,

	"source": fieldSource, "sourceurl": fieldSource, "url": fieldSource, "link": fieldSource,
	"website": fieldSource, "recipeurl": fieldSource, "cleanedurl": fieldSource,

	"servings": fieldServings, "serves": fieldServings, "portions": fieldServings,

	"ingredients": fieldIngredients, "ingredient": fieldIngredients,
	"ingredientlist": fieldIngredients,

	"directions": fieldInstructions, "instructions": fieldInstructions, "steps": fieldInstructions,
	"method": fieldInstructions, "preparation": fieldInstructions,

	"notes": fieldNotes, "note": fieldNotes, "comments": fieldNotes, "tips": fieldNotes,

	"tags": fieldTags, "keywords": fieldTags, "categories": fieldTags, "category": fieldTags,

	"description": fieldDescription, "summary": fieldDescription, "intro": fieldDescription,
	"course": fieldCourse, "mealtype": fieldCourse,
	"preptime": fieldPrepTime, "prep": fieldPrepTime,
	"cooktime": fieldCookTime, "cook": fieldCookTime,
	"totaltime": fieldTotalTime, "time": fieldTotalTime,
	"yield": fieldYield, "makes": fieldYield,
	"rating": fieldRating, "stars": fieldRating,
	"photourl": fieldPhoto, "photo": fieldPhoto, "image": fieldPhoto, "imageurl": fieldPhoto,

	"calories": fieldNutrition, "fat": fieldNutrition, "cholesterol": fieldNutrition,
	"sodium": fieldNutrition, "sugar": fieldNutrition, "carbohydrate": fieldNutrition,
	"carbs": fieldNutrition, "fiber": fieldNutrition, "protein": fieldNutrition,

	"sourcefile": fieldSourceFile, "file": fieldSourceFile,
	"page": fieldPage,
	"confidence": fieldConfidence,
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HeaderField reports which record field an ad-hoc header maps to.
func HeaderField(header string) (string, bool) {
	f, ok := headerAliases[normalizeHeader(header)]
	if !ok {
		return "", false
	}
	return fieldNames[f], true
}

var fieldNames = map[field]string{
	fieldTitle: "title", fieldSource: "source", fieldServings: "servings",
	fieldIngredients: "ingredients", fieldInstructions: "instructions", fieldNotes: "notes",
	fieldTags: "tags", fieldDescription: "description", fieldCourse: "course",
	fieldPrepTime: "prep_time", fieldCookTime: "cook_time", fieldTotalTime: "total_time",
	fieldYield: "yield", fieldRating: "rating", fieldPhoto: "photo_url",
	fieldNutrition: "nutrition", fieldSourceFile: "source_file", fieldPage: "page",
	fieldConfidence: "confidence",
}

// ReadCSV maps each row of an ad-hoc CSV onto a Record. Unmapped columns are
// dropped and rows without a title or any content are skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	fields := make([]field, len(header))
	for i, h := range header {
		fields[i] = headerAliases[normalizeHeader(h)]
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("read csv row: %w", err)
		}
		rec, ok := recordFromRow(header, fields, row)
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordFromRow(header []string, fields []field, row []string) (Record, bool) {
	var r Record
	content := false
	for i, cell := range row {
		if i >= len(fields) {
			break
		}
		cell = strings.TrimSpace(cell)
		if cell == "" || fields[i] == fieldNone {
			continue
		}
		content = true
		switch fields[i] {
		case fieldTitle:
			if r.Title == "" {
				r.Title = cell
			}
		case fieldSource:
			if r.Source == "" {
				r.Source = cell
			}
		case fieldServings:
			r.Servings = cell
		case fieldIngredients:
			r.Ingredients = append(r.Ingredients, SplitLines(cell)...)
		case fieldInstructions:
			r.Instructions = append(r.Instructions, SplitLines(cell)...)
		case fieldNotes:
			r.Notes = cell
		case fieldTags:
			r.AddTags(SplitTags(cell)...)
		case fieldDescription:
			r.Description = cell
		case fieldCourse:
			r.Course = cell
		case fieldPrepTime:
			r.PrepTime = cell
		case fieldCookTime:
			r.CookTime = cell
		case fieldTotalTime:
			r.TotalTime = cell
		case fieldYield:
			r.Yield = cell
		case fieldRating:
			r.Rating = cell
		case fieldPhoto:
			r.PhotoURL = cell
		case fieldNutrition:
			if r.Nutrition == nil {
				r.Nutrition = make(map[string]string)
			}
			key := normalizeHeader(header[i])
			if key == "carbs" {
				key = "carbohydrate"
			}
			r.Nutrition[key] = cell
		case fieldSourceFile:
			r.SourceFile = cell
		case fieldPage:
			r.Page, _ = strconv.Atoi(cell)
		case fieldConfidence:
			r.Confidence, _ = strconv.ParseFloat(cell, 64)
		}
	}
	if !content {
		return Record{}, false
	}
	if r.Title == "" {
		if len(r.Ingredients) == 0 && len(r.Instructions) == 0 {
			return Record{}, false
		}
		r.Title = "Untitled Recipe"
	}
	return r, true
}
