package formula

import "strings"

// ToPlainText flattens segments into a single line for copying. The output
// is meant for people and is not valid input to Parse.
func ToPlainText(segs []Segment) string {
	var sb strings.Builder
	writePlain(&sb, segs)
	return sb.String()
}

func writePlain(sb *strings.Builder, segs []Segment) {
	for _, seg := range segs {
		switch s := seg.(type) {
		case Text:
			sb.WriteString(s.Content)
		case Superscript:
			sb.WriteString("^(")
			writePlain(sb, s.Content)
			sb.WriteString(")")
		case Subscript:
			sb.WriteString("_(")
			writePlain(sb, s.Content)
			sb.WriteString(")")
		case Fraction:
			sb.WriteString("(")
			writePlain(sb, s.Numerator)
			sb.WriteString(")/(")
			writePlain(sb, s.Denominator)
			sb.WriteString(")")
		case Sqrt:
			sb.WriteString("√(")
			writePlain(sb, s.Content)
			sb.WriteString(")")
		}
	}
}

// PlainText parses formula and flattens it in one step.
func PlainText(formula string) string {
	return ToPlainText(Parse(formula))
}
