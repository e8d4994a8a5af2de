package formula

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a segment variant.
type Kind string

const (
	KindText        Kind = "text"
	KindSuperscript Kind = "superscript"
	KindSubscript   Kind = "subscript"
	KindFraction    Kind = "fraction"
	KindSqrt        Kind = "sqrt"
)

// Segment is one node of a parsed formula. Consumers switch on the concrete
// type and must ignore kinds they do not know.
type Segment interface {
	Kind() Kind
}

// Text is literal display text.
type Text struct {
	Content string
}

// Superscript is a raised, reduced-size sequence.
type Superscript struct {
	Content []Segment
}

// Subscript is a lowered, reduced-size sequence.
type Subscript struct {
	Content []Segment
}

// Fraction stacks Numerator over Denominator.
type Fraction struct {
	Numerator   []Segment
	Denominator []Segment
}

// Sqrt is a radical over Content.
type Sqrt struct {
	Content []Segment
}

func (Text) Kind() Kind        { return KindText }
func (Superscript) Kind() Kind { return KindSuperscript }
func (Subscript) Kind() Kind   { return KindSubscript }
func (Fraction) Kind() Kind    { return KindFraction }
func (Sqrt) Kind() Kind        { return KindSqrt }

// Equal reports whether two segment sequences are structurally identical.
// A nil and an empty sequence are equal.
func Equal(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalSegment(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSegment(a, b Segment) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x.Content == y.Content
	case Superscript:
		y, ok := b.(Superscript)
		return ok && Equal(x.Content, y.Content)
	case Subscript:
		y, ok := b.(Subscript)
		return ok && Equal(x.Content, y.Content)
	case Fraction:
		y, ok := b.(Fraction)
		return ok && Equal(x.Numerator, y.Numerator) && Equal(x.Denominator, y.Denominator)
	case Sqrt:
		y, ok := b.(Sqrt)
		return ok && Equal(x.Content, y.Content)
	}
	return false
}

// wireSegment is the JSON shape of a segment. Text carries its string in
// Text; composite kinds use Content or Numerator/Denominator.
type wireSegment struct {
	Type        Kind          `json:"type"`
	Text        string        `json:"text,omitempty"`
	Content     []wireSegment `json:"content,omitempty"`
	Numerator   []wireSegment `json:"numerator,omitempty"`
	Denominator []wireSegment `json:"denominator,omitempty"`
}

func toWire(segs []Segment) []wireSegment {
	out := make([]wireSegment, 0, len(segs))
	for _, s := range segs {
		switch v := s.(type) {
		case Text:
			out = append(out, wireSegment{Type: KindText, Text: v.Content})
		case Superscript:
			out = append(out, wireSegment{Type: KindSuperscript, Content: toWire(v.Content)})
		case Subscript:
			out = append(out, wireSegment{Type: KindSubscript, Content: toWire(v.Content)})
		case Fraction:
			out = append(out, wireSegment{
				Type:        KindFraction,
				Numerator:   toWire(v.Numerator),
				Denominator: toWire(v.Denominator),
			})
		case Sqrt:
			out = append(out, wireSegment{Type: KindSqrt, Content: toWire(v.Content)})
		}
	}
	return out
}

func fromWire(ws []wireSegment) ([]Segment, error) {
	var out []Segment
	for _, w := range ws {
		switch w.Type {
		case KindText:
			out = append(out, Text{Content: w.Text})
		case KindSuperscript, KindSubscript, KindSqrt:
			content, err := fromWire(w.Content)
			if err != nil {
				return nil, err
			}
			switch w.Type {
			case KindSuperscript:
				out = append(out, Superscript{Content: content})
			case KindSubscript:
				out = append(out, Subscript{Content: content})
			default:
				out = append(out, Sqrt{Content: content})
			}
		case KindFraction:
			num, err := fromWire(w.Numerator)
			if err != nil {
				return nil, err
			}
			den, err := fromWire(w.Denominator)
			if err != nil {
				return nil, err
			}
			out = append(out, Fraction{Numerator: num, Denominator: den})
		default:
			return nil, fmt.Errorf("unknown segment type %q", w.Type)
		}
	}
	return out, nil
}

// MarshalSegments encodes a segment sequence as a JSON array. Kinds outside
// this package are skipped.
func MarshalSegments(segs []Segment) ([]byte, error) {
	return json.Marshal(toWire(segs))
}

// UnmarshalSegments decodes the output of MarshalSegments.
func UnmarshalSegments(data []byte) ([]Segment, error) {
	var ws []wireSegment
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return fromWire(ws)
}

// Tree is a JSON-friendly view of a segment sequence.
type Tree []Segment

func (t Tree) MarshalJSON() ([]byte, error) {
	return MarshalSegments(t)
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	segs, err := UnmarshalSegments(data)
	if err != nil {
		return err
	}
	*t = segs
	return nil
}
