package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes the schema fields first, in schema order, followed by
// whichever optional fields are set.
func (r Record) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, v interface{}) error {
		var vn yaml.Node
		if err := vn.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		m.Content = append(m.Content, keyNode(key), &vn)
		return nil
	}

	fields := []struct {
		key  string
		val  interface{}
		keep bool
	}{
		{"title", r.Title, true},
		{"source", r.Source, true},
		{"servings", servingsValue(r), r.Servings != ""},
		{"ingredients", orEmpty(r.Ingredients), true},
		{"instructions", orEmpty(r.Instructions), true},
		{"notes", r.Notes, r.Notes != ""},
		{"tags", orEmpty(r.Tags), true},
		{"description", r.Description, r.Description != ""},
		{"course", r.Course, r.Course != ""},
		{"prep_time", r.PrepTime, r.PrepTime != ""},
		{"cook_time", r.CookTime, r.CookTime != ""},
		{"total_time", r.TotalTime, r.TotalTime != ""},
		{"yield", r.Yield, r.Yield != ""},
		{"rating", r.Rating, r.Rating != ""},
		{"photo_url", r.PhotoURL, r.PhotoURL != ""},
		{"video", r.Video, r.Video != ""},
		{"cook_count", r.CookCount, r.CookCount > 0},
	}
	for _, f := range fields {
		if !f.keep {
			continue
		}
		if err := add(f.key, f.val); err != nil {
			return nil, err
		}
	}

	if len(r.Nutrition) > 0 {
		nm := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range NutritionKeys(r.Nutrition) {
			nm.Content = append(nm.Content, keyNode(k), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Nutrition[k]})
		}
		m.Content = append(m.Content, keyNode("nutrition"), nm)
	}

	if r.SourceFile != "" {
		if err := add("source_file", r.SourceFile); err != nil {
			return nil, err
		}
	}
	if r.Page > 0 {
		if err := add("page", r.Page); err != nil {
			return nil, err
		}
	}
	if r.Confidence > 0 {
		if err := add("confidence", r.Confidence); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func servingsValue(r Record) interface{} {
	if n, ok := r.NumericServings(); ok {
		return n
	}
	return r.Servings
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// UnmarshalYAML accepts our own records as well as the app's export shape.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	value = deref(value)
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: recipe must be a mapping", value.Line)
	}
	*r = Record{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(value.Content[i].Value))
		v := deref(value.Content[i+1])
		switch key {
		case "title":
			r.Title = strings.TrimSpace(scalarText(v))
		case "name":
			if r.Title == "" {
				r.Title = strings.TrimSpace(scalarText(v))
			}
		case "source":
			r.Source = strings.TrimSpace(scalarText(v))
		case "source_url", "url":
			if r.Source == "" {
				r.Source = strings.TrimSpace(scalarText(v))
			}
		case "servings", "serves":
			r.Servings = strings.TrimSpace(scalarText(v))
		case "ingredients":
			r.Ingredients = listText(v, true)
		case "instructions", "directions", "steps":
			if len(r.Instructions) == 0 {
				r.Instructions = listText(v, false)
			}
		case "notes":
			r.Notes = strings.TrimSpace(scalarText(v))
		case "tags", "keywords", "categories":
			if v.Kind == yaml.SequenceNode {
				r.AddTags(listText(v, false)...)
			} else {
				r.AddTags(SplitTags(scalarText(v))...)
			}
		case "description":
			r.Description = strings.TrimSpace(scalarText(v))
		case "course":
			r.Course = scalarText(v)
		case "prep_time":
			r.PrepTime = scalarText(v)
		case "cook_time":
			r.CookTime = scalarText(v)
		case "total_time":
			r.TotalTime = scalarText(v)
		case "yield":
			r.Yield = scalarText(v)
		case "rating":
			r.Rating = scalarText(v)
		case "photo_url", "image", "photo":
			r.PhotoURL = scalarText(v)
		case "video":
			r.Video = scalarText(v)
		case "cook_count":
			r.CookCount, _ = strconv.Atoi(scalarText(v))
		case "nutrition":
			r.Nutrition = nutritionFrom(v)
		case "source_file":
			r.SourceFile = scalarText(v)
		case "page":
			r.Page, _ = strconv.Atoi(scalarText(v))
		case "confidence":
			r.Confidence, _ = strconv.ParseFloat(scalarText(v), 64)
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func scalarText(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if s := scalarText(deref(c)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// listText reads a sequence item by item, keeping each item's text as
// written. Blank items survive only with keepBlank, where they separate
// ingredient groups. A scalar is split into trimmed non-empty lines.
func listText(n *yaml.Node, keepBlank bool) []string {
	if n.Kind != yaml.SequenceNode {
		return SplitLines(scalarText(n))
	}
	var out []string
	for _, c := range n.Content {
		s := scalarText(deref(c))
		if strings.TrimSpace(s) == "" && !keepBlank {
			continue
		}
		out = append(out, s)
	}
	return out
}

func nutritionFrom(n *yaml.Node) map[string]string {
	if n.Kind != yaml.MappingNode {
		return ParseNutrition(scalarText(n))
	}
	out := make(map[string]string)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(n.Content[i].Value))
		if val := strings.TrimSpace(scalarText(deref(n.Content[i+1]))); key != "" && val != "" {
			out[key] = val
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Encode renders one record as a YAML document.
func Encode(r Record) ([]byte, error) {
	return encode(r)
}

// EncodeAll renders records as a single YAML sequence.
func EncodeAll(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return encode(records)
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document holding exactly one record.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode recipe: %w", err)
	}
	return r, nil
}

// DecodeAll parses every record in data. Each document may be a single
// record or a sequence of records; empty documents are ignored.
func DecodeAll(data []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []Record
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode recipes: %w", err)
		}
		root := &doc
		if root.Kind == yaml.DocumentNode {
			if len(root.Content) == 0 {
				continue
			}
			root = root.Content[0]
		}
		root = deref(root)
		switch root.Kind {
		case yaml.SequenceNode:
			for _, item := range root.Content {
				var r Record
				if err := r.UnmarshalYAML(item); err != nil {
					return nil, fmt.Errorf("decode recipes: %w", err)
				}
				out = append(out, r)
			}
		case yaml.MappingNode:
			var r Record
			if err := r.UnmarshalYAML(root); err != nil {
				return nil, fmt.Errorf("decode recipes: %w", err)
			}
			out = append(out, r)
		case yaml.ScalarNode:
			if root.Tag != "!!null" {
				return nil, fmt.Errorf("decode recipes: line %d: unexpected scalar document", root.Line)
			}
		}
	}
	return out, nil
}

// ReadFile decodes every record stored in a YAML file.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteFile writes r as a single YAML document.
func WriteFile(path string, r Record) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
