// Package markdown extracts the lightweight document structure rules need
// from markdown sources: YAML frontmatter, headings, and the links under each
// heading. It deliberately does not render anything.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Section is one heading and the link destinations that appear before the
// next heading. The content before the first heading is represented as a
// preamble section with an empty title and level 0.
type Section struct {
	Title string
	Level int
	Links []string
}

// Document is the parsed outline of a markdown file.
type Document struct {
	Frontmatter map[string]any
	Sections    []Section
}

var md = goldmark.New(
	goldmark.WithExtensions(meta.Meta),
)

// Parse builds the outline for the given markdown source.
// Malformed frontmatter is treated as absent rather than failing the parse.
func Parse(source []byte) (*Document, error) {
	pctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	doc := &Document{}
	if fm, err := meta.TryGet(pctx); err == nil {
		doc.Frontmatter = fm
	}

	current := Section{}
	flush := func() {
		if current.Title != "" || current.Level > 0 || len(current.Links) > 0 {
			doc.Sections = append(doc.Sections, current)
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Heading:
			flush()
			current = Section{
				Title: nodeText(t, source),
				Level: t.Level,
			}
			// Links inside the heading itself belong to the section.
			return ast.WalkContinue, nil
		case *ast.Link:
			current.Links = append(current.Links, string(t.Destination))
		case *ast.AutoLink:
			current.Links = append(current.Links, string(t.URL(source)))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	flush()
	return doc, nil
}

// Section returns the first section whose title matches (case-insensitive).
func (d *Document) Section(title string) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, s := range d.Sections {
		if strings.EqualFold(strings.TrimSpace(s.Title), title) {
			return s, true
		}
	}
	return Section{}, false
}

// FrontmatterString returns the frontmatter value for key as a string.
// Non-scalar values are stringified with fmt.
func (d *Document) FrontmatterString(key string) (string, bool) {
	if d == nil || d.Frontmatter == nil {
		return "", false
	}
	v, ok := d.Frontmatter[key]
	if !ok || v == nil {
		return "", false
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v)), true
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
