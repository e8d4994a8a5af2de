package render

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/studyhub/internal/formula"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML builds the inline HTML for a laid out formula. It returns nil for a
// nil box.
func HTML(b *Box, opts Options) *html.Node {
	if b == nil {
		return nil
	}
	style := []string{"font-size:" + px(b.FontSize), "white-space:nowrap"}
	if c := SafeColor(opts.Color); c != "" {
		style = append(style, "color:"+c)
	}
	root := span("formula "+opts.Size.Class(), style...)
	appendBoxes(root, b.Children)
	return root
}

// Render lays out segs and writes them as HTML. Nothing is written for an
// empty sequence.
func Render(w io.Writer, segs []formula.Segment, opts Options) error {
	n := HTML(Layout(segs, opts), opts)
	if n == nil {
		return nil
	}
	return html.Render(w, n)
}

// RenderString is Render into a string.
func RenderString(segs []formula.Segment, opts Options) string {
	n := HTML(Layout(segs, opts), opts)
	if n == nil {
		return ""
	}
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = html.Render(&sb, n)
	return sb.String()
}

func appendBoxes(parent *html.Node, boxes []*Box) {
	for _, b := range boxes {
		if n := boxNode(b); n != nil {
			parent.AppendChild(n)
		}
	}
}

func boxNode(b *Box) *html.Node {
	switch b.Kind {
	case BoxText:
		return &html.Node{Type: html.TextNode, Data: b.Text}

	case BoxRaised, BoxLowered:
		class := "formula-sup"
		if b.Kind == BoxLowered {
			class = "formula-sub"
		}
		n := span(class, "font-size:"+px(b.FontSize), "vertical-align:"+px(b.Shift))
		appendBoxes(n, b.Children)
		return n

	case BoxFraction:
		n := span("formula-frac",
			"display:inline-flex",
			"flex-direction:column",
			"align-items:center",
			"vertical-align:middle",
			"font-size:"+px(b.FontSize),
		)
		num := span("formula-num", "padding:0 0.2em")
		appendBoxes(num, b.Numerator.Children)
		den := span("formula-den", "padding:0 0.2em")
		appendBoxes(den, b.Denominator.Children)
		n.AppendChild(num)
		n.AppendChild(span("formula-rule",
			"display:block",
			"align-self:stretch",
			"min-width:"+px(b.RuleWidth),
			"border-top:1px solid currentColor",
		))
		n.AppendChild(den)
		return n

	case BoxRadical:
		n := span("formula-sqrt", "white-space:nowrap")
		glyph := span("formula-radical", "font-size:"+px(b.GlyphSize))
		glyph.AppendChild(&html.Node{Type: html.TextNode, Data: "√"})
		radicand := span("formula-radicand",
			"border-top:1px solid currentColor",
			"padding-top:1px",
			"min-width:"+px(b.RuleWidth),
		)
		appendBoxes(radicand, b.Children)
		n.AppendChild(glyph)
		n.AppendChild(radicand)
		return n

	case BoxGroup:
		n := span("")
		appendBoxes(n, b.Children)
		return n
	}
	return nil
}

func span(class string, style ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	if len(style) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: strings.Join(style, ";")})
	}
	return n
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "px"
}
