// Package markdown is a goldmark extension that renders formula notation
// embedded in Markdown. Fenced blocks tagged ```formula (or math/latex)
// become display formulas, one per line, and $...$ spans become inline
// formulas. A \$ stays a literal dollar sign.
package markdown

import (
	"bytes"
	"strings"

	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Extension adds formula support to a goldmark.Markdown. A nil Symbols uses
// formula.DefaultSymbols.
type Extension struct {
	Symbols *formula.SymbolTable
	Options render.Options
}

// Convert renders Markdown source to HTML with the extension enabled.
func (e *Extension) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(e))
	if err := md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		gmparser.WithASTTransformers(
			util.Prioritized(blockTransformer{}, 100),
		),
		gmparser.WithInlineParsers(
			util.Prioritized(inlineParser{}, 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&nodeRenderer{ext: e}, 100),
		),
	)
}

func (e *Extension) html(src string) string {
	symbols := e.Symbols
	if symbols == nil {
		symbols = formula.DefaultSymbols
	}
	return render.RenderString(symbols.Parse(src), e.Options)
}

// KindFormulaBlock is the node kind of a display formula block.
var KindFormulaBlock = ast.NewNodeKind("FormulaBlock")

// FormulaBlock holds the lines of a fenced formula block.
type FormulaBlock struct {
	ast.BaseBlock
}

func (n *FormulaBlock) Kind() ast.NodeKind { return KindFormulaBlock }

func (n *FormulaBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindInlineFormula is the node kind of a $...$ span.
var KindInlineFormula = ast.NewNodeKind("InlineFormula")

// InlineFormula is a $...$ span. Segment covers the text between the
// dollar signs.
type InlineFormula struct {
	ast.BaseInline
	Segment text.Segment
}

func (n *InlineFormula) Kind() ast.NodeKind { return KindInlineFormula }

func (n *InlineFormula) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Formula": string(n.Segment.Value(source)),
	}, nil)
}

type blockTransformer struct{}

func (blockTransformer) Transform(doc *ast.Document, reader text.Reader, _ gmparser.Context) {
	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if parser.FormulaLanguages[strings.ToLower(string(fenced.Language(reader.Source())))] {
			blocks = append(blocks, fenced)
		}
		return ast.WalkSkipChildren, nil
	})
	for _, fenced := range blocks {
		parent := fenced.Parent()
		if parent == nil {
			continue
		}
		block := &FormulaBlock{}
		block.SetLines(fenced.Lines())
		parent.ReplaceChild(parent, fenced, block)
	}
}

type inlineParser struct{}

func (inlineParser) Trigger() []byte { return []byte{'$'} }

func (inlineParser) Parse(_ ast.Node, block text.Reader, _ gmparser.Context) ast.Node {
	line, seg := block.PeekLine()
	end := inlineEnd(line)
	if end < 0 {
		return nil
	}
	block.Advance(end + 1)
	return &InlineFormula{Segment: text.NewSegment(seg.Start+1, seg.Start+end)}
}

// inlineEnd returns the index of the dollar that closes the span opened at
// line[0], or -1. The opener may not be followed by a digit or a space, the
// closer may not be escaped or followed by a digit, and the span may not
// cross a line.
func inlineEnd(line []byte) int {
	if len(line) < 3 || line[0] != '$' {
		return -1
	}
	if c := line[1]; c == '$' || util.IsSpace(c) || isDigit(c) {
		return -1
	}
	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\n', '\r':
			return -1
		case '\\':
			i++
		case '$':
			if i+1 < len(line) && isDigit(line[i+1]) {
				continue
			}
			if util.IsSpace(line[i-1]) {
				continue
			}
			return i
		}
	}
	return -1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type nodeRenderer struct {
	ext *Extension
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFormulaBlock, r.renderBlock)
	reg.Register(KindInlineFormula, r.renderInline)
}

func (r *nodeRenderer) renderBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<div class=\"formula-block\">\n")
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		src := strings.TrimSpace(string(seg.Value(source)))
		if src == "" {
			continue
		}
		_, _ = w.WriteString("<div class=\"formula-line\">")
		_, _ = w.WriteString(r.ext.html(src))
		_, _ = w.WriteString("</div>\n")
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderInline(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	f := n.(*InlineFormula)
	_, _ = w.WriteString(r.ext.html(string(f.Segment.Value(source))))
	return ast.WalkSkipChildren, nil
}
