package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/studyhub/internal/formula"
)

// Size is a display tier.
type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
)

// ParseSize parses a tier name. An empty string means Medium.
func ParseSize(s string) (Size, error) {
	switch Size(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Medium, nil
	case Small:
		return Small, nil
	case Medium:
		return Medium, nil
	case Large:
		return Large, nil
	}
	return "", fmt.Errorf("unknown size %q (want small, medium or large)", s)
}

// FontPx returns the base font size of the tier in pixels.
func (s Size) FontPx() float64 {
	switch s {
	case Small:
		return 14
	case Large:
		return 24
	}
	return 18
}

// Class returns the CSS class carried by the formula root for the tier.
func (s Size) Class() string {
	switch s {
	case Small:
		return "formula-sm"
	case Large:
		return "formula-lg"
	}
	return "formula-md"
}

// Options controls rendering.
type Options struct {
	Size  Size
	Color string // CSS colour; invalid values are ignored
}

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)

// SafeColor returns c if it is a hex colour or a colour keyword, else "".
func SafeColor(c string) string {
	c = strings.TrimSpace(c)
	if colorRe.MatchString(c) {
		return c
	}
	return ""
}

// Layout constants, relative to the font size of the enclosing content.
const (
	ScriptScale   = 0.65 // superscript and subscript content
	FractionScale = 0.85 // numerator and denominator
	RadicalScale  = 1.1  // the √ glyph relative to the radicand

	raiseEm   = 0.5  // superscript baseline shift
	lowerEm   = 0.25 // subscript baseline shift (downwards)
	advanceEm = 0.55 // estimated advance per rune
	fracPadEm = 0.2  // horizontal padding around numerator and denominator
)

// BoxKind identifies a layout box.
type BoxKind string

const (
	BoxText     BoxKind = "text"
	BoxGroup    BoxKind = "group"
	BoxRaised   BoxKind = "raised"
	BoxLowered  BoxKind = "lowered"
	BoxFraction BoxKind = "fraction"
	BoxRadical  BoxKind = "radical"
)

// Box is one node of the visual layout. Sizes are in pixels.
type Box struct {
	Kind     BoxKind
	Text     string  // BoxText only
	FontSize float64 // font size of the box content
	Shift    float64 // baseline shift; positive raises
	Width    float64 // estimated advance width
	Children []*Box  // group, raised, lowered and radical content

	Numerator   *Box    // BoxFraction
	Denominator *Box    // BoxFraction
	RuleWidth   float64 // fraction divider or vinculum length
	GlyphSize   float64 // font size of the √ glyph
}

// Layout computes the visual layout of segs. It returns nil when there is
// nothing to render. Segment kinds it does not know are skipped.
func Layout(segs []formula.Segment, opts Options) *Box {
	if len(segs) == 0 {
		return nil
	}
	root := layoutSeq(segs, opts.Size.FontPx())
	if len(root.Children) == 0 {
		return nil
	}
	return root
}

func layoutSeq(segs []formula.Segment, font float64) *Box {
	g := &Box{Kind: BoxGroup, FontSize: font}
	for _, seg := range segs {
		b := layoutSegment(seg, font)
		if b == nil {
			continue
		}
		g.Children = append(g.Children, b)
		g.Width += b.Width
	}
	return g
}

func layoutSegment(seg formula.Segment, font float64) *Box {
	switch s := seg.(type) {
	case formula.Text:
		return &Box{
			Kind:     BoxText,
			Text:     s.Content,
			FontSize: font,
			Width:    float64(utf8.RuneCountInString(s.Content)) * advanceEm * font,
		}
	case formula.Superscript:
		inner := layoutSeq(s.Content, font*ScriptScale)
		return &Box{
			Kind:     BoxRaised,
			FontSize: inner.FontSize,
			Shift:    raiseEm * font,
			Width:    inner.Width,
			Children: inner.Children,
		}
	case formula.Subscript:
		inner := layoutSeq(s.Content, font*ScriptScale)
		return &Box{
			Kind:     BoxLowered,
			FontSize: inner.FontSize,
			Shift:    -lowerEm * font,
			Width:    inner.Width,
			Children: inner.Children,
		}
	case formula.Fraction:
		num := layoutSeq(s.Numerator, font*FractionScale)
		den := layoutSeq(s.Denominator, font*FractionScale)
		rule := max(num.Width, den.Width) + 2*fracPadEm*font*FractionScale
		return &Box{
			Kind:        BoxFraction,
			FontSize:    font * FractionScale,
			Width:       rule,
			Numerator:   num,
			Denominator: den,
			RuleWidth:   rule,
		}
	case formula.Sqrt:
		inner := layoutSeq(s.Content, font)
		glyph := font * RadicalScale
		return &Box{
			Kind:      BoxRadical,
			FontSize:  font,
			GlyphSize: glyph,
			Width:     advanceEm*glyph + inner.Width,
			Children:  inner.Children,
			RuleWidth: inner.Width,
		}
	}
	return nil
}
