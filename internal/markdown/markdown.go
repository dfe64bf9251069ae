// Package markdown reads the heading outline of Markdown bodies.
package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one ATX or setext heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"title"`
	Slug  string `json:"slug"`
}

// ParseBody parses a Markdown body (frontmatter already removed) into a Goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(body))
}

// Headings returns every heading with level in [minLevel, maxLevel], in document order.
// Slugs are unique within the document: repeats get "-1", "-2" suffixes.
func Headings(body []byte, minLevel, maxLevel int) []Heading {
	root := ParseBody(body)
	used := map[string]int{}
	var out []Heading

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		txt := strings.TrimSpace(plainText(h, body))
		slug := Slugify(txt)
		if c := used[slug]; c > 0 {
			used[slug] = c + 1
			slug = slug + "-" + strconv.Itoa(c)
		} else {
			used[slug] = 1
		}
		if h.Level >= minLevel && h.Level <= maxLevel {
			out = append(out, Heading{Level: h.Level, Text: txt, Slug: slug})
		}
		return gmast.WalkSkipChildren, nil
	})
	return out
}

// FirstHeading returns the text of the first heading of the given level.
func FirstHeading(body []byte, level int) (string, bool) {
	hs := Headings(body, level, level)
	if len(hs) == 0 {
		return "", false
	}
	return hs[0].Text, true
}

// plainText concatenates the literal text below n, dropping markup.
func plainText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		case *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}
