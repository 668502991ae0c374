package recipeparse

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/recipekit/recipe"
)

var markdown = goldmark.New()

// ParseMarkdown extracts a record from a Markdown recipe. The first level
// one heading is the title; later headings open sections the same way the
// plain text headers do. Paragraphs before the first section make up the
// description.
func ParseMarkdown(src []byte) recipe.Record {
	doc := markdown.Parser().Parse(text.NewReader(src))
	w := &mdWalker{src: src}
	w.walk(doc)

	rec := w.rec
	if rec.Title == "" {
		rec.Title = UntitledRecipe
	}
	rec.Description = strings.Join(w.desc, "\n\n")
	rec.Notes = strings.Join(w.notes, "\n")
	rec.AddTags(recipe.DetectTags(rec.Title+" "+rec.Description+" "+strings.Join(rec.Ingredients, " "), recipe.CuisineVocabulary)...)
	return rec
}

type mdWalker struct {
	src   []byte
	rec   recipe.Record
	cur   section
	other bool // inside a heading that maps to no known section
	desc  []string
	notes []string
}

func (w *mdWalker) walk(node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			w.heading(n)
		case *ast.List:
			w.walk(n)
		case *ast.ListItem:
			w.add(joinLines(inlineText(n, w.src)))
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if l, ok := c.(*ast.List); ok {
					w.walk(l)
				}
			}
		case *ast.Paragraph, *ast.TextBlock:
			w.paragraph(inlineText(n, w.src))
		}
	}
}

func (w *mdWalker) heading(n *ast.Heading) {
	title := inlineText(n, w.src)
	if n.Level == 1 && w.rec.Title == "" {
		w.rec.Title = title
		return
	}
	s, rest, ok := headerSection(title)
	w.cur, w.other = s, !ok
	if rest != "" {
		w.add(rest)
	}
}

func (w *mdWalker) paragraph(p string) {
	if p == "" {
		return
	}
	switch {
	case w.cur == sectionNone && !w.other:
		if m := servesLine.FindStringSubmatch(p); m != nil && w.rec.Servings == "" {
			w.rec.Servings = strings.ReplaceAll(m[1], " ", "")
			return
		}
		w.desc = append(w.desc, joinLines(p))
	case w.cur == sectionInstructions:
		w.add(joinLines(p))
	default:
		for _, ln := range recipe.SplitLines(p) {
			w.add(ln)
		}
	}
}

func (w *mdWalker) add(item string) {
	item = stripBullet(item)
	if item == "" {
		return
	}
	switch w.cur {
	case sectionIngredients:
		w.rec.Ingredients = append(w.rec.Ingredients, item)
	case sectionInstructions:
		w.rec.Instructions = append(w.rec.Instructions, item)
	case sectionNotes:
		w.notes = append(w.notes, item)
	case sectionTags:
		w.rec.AddTags(recipe.SplitTags(item)...)
	}
}

func joinLines(s string) string {
	return strings.Join(recipe.SplitLines(s), " ")
}

// inlineText flattens the text under n. Soft line breaks inside a paragraph
// become newlines so ingredient blocks written without list markers keep
// one item per line.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte('\n')
				}
			case *ast.String:
				b.Write(t.Value)
			case *ast.List:
				// nested lists are walked as their own items
			default:
				if c.Type() == ast.TypeBlock && b.Len() > 0 {
					b.WriteByte('\n')
				}
				visit(c)
			}
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}
