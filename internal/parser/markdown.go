package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/sheet"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FormulaLanguages are the fenced code block info strings read as formulas.
var FormulaLanguages = map[string]bool{"formula": true, "math": true, "latex": true}

// MarkdownParser handles Markdown files using goldmark. Headings set the
// topic and every line of a ```formula fenced block becomes an entry.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*sheet.Sheet, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	c := newCollector(titleFromFilename(filename))

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			c.heading(headingText(node, src))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if !FormulaLanguages[strings.ToLower(string(node.Language(src)))] {
				return ast.WalkSkipChildren, nil
			}
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				c.add(string(seg.Value(src)), 1+bytes.Count(src[:seg.Start], []byte("\n")))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return c.done(), nil
}

// headingText gets the plain text of a heading's inline children.
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.WriteString(headingText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
