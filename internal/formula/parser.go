package formula

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	cmdFrac = `\frac`
	cmdSqrt = `\sqrt`
)

// Parse converts formula notation into a segment sequence using
// DefaultSymbols. It never fails: malformed notation degrades to literal
// text. Empty or all-whitespace input yields nil.
func Parse(formula string) []Segment {
	return DefaultSymbols.Parse(formula)
}

// Parse converts formula notation into a segment sequence, substituting
// symbols from t first.
//
// Supported notation:
//
//	\frac{A}{B}   fraction
//	\sqrt{A}      square root
//	^{A}  ^x      superscript
//	_{A}  _x      subscript
//
// Everything else is literal text. Group content is parsed with the same
// grammar, and adjacent text is always merged into one Text.
func (t *SymbolTable) Parse(formula string) []Segment {
	if strings.TrimSpace(formula) == "" {
		return nil
	}
	return parseSegments(t.Substitute(formula))
}

// parseSegments parses already substituted notation. Groups recurse here
// directly since substitution is idempotent.
func parseSegments(s string) []Segment {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var segs []Segment
	// Text segments returned by next are always the consumed bytes, so a run
	// of them is a contiguous slice of s and is merged by slicing.
	textStart := -1
	for pos := 0; pos < len(s); {
		seg, n := next(s[pos:])
		if _, ok := seg.(Text); ok {
			if textStart < 0 {
				textStart = pos
			}
		} else {
			if textStart >= 0 {
				segs = append(segs, Text{Content: s[textStart:pos]})
				textStart = -1
			}
			segs = append(segs, seg)
		}
		pos += n
	}
	if textStart >= 0 {
		segs = append(segs, Text{Content: s[textStart:]})
	}
	return segs
}

// next decodes one segment at the start of s and returns it with the number
// of bytes consumed, which is always at least one.
func next(s string) (Segment, int) {
	switch {
	case strings.HasPrefix(s, cmdFrac+"{"):
		num, end, ok := braced(s, len(cmdFrac))
		if !ok {
			break
		}
		den, end2, ok := braced(s, end)
		if !ok {
			// Numerator without a denominator: keep the command literal and
			// let the numerator be read as ordinary text.
			return Text{Content: cmdFrac + "{"}, len(cmdFrac) + 1
		}
		return Fraction{Numerator: parseSegments(num), Denominator: parseSegments(den)}, end2

	case strings.HasPrefix(s, cmdSqrt+"{"):
		content, end, ok := braced(s, len(cmdSqrt))
		if !ok {
			break
		}
		return Sqrt{Content: parseSegments(content)}, end

	case s[0] == '^' || s[0] == '_':
		content, end, ok := script(s)
		if !ok {
			break
		}
		if s[0] == '^' {
			return Superscript{Content: parseSegments(content)}, end
		}
		return Subscript{Content: parseSegments(content)}, end
	}

	if isTrigger(s, 0) {
		_, size := utf8.DecodeRuneInString(s)
		return Text{Content: s[:size]}, size
	}
	end := nextTrigger(s)
	return Text{Content: s[:end]}, end
}

// script reads the body of a ^ or _ at s[0]: either a braced group or a
// single simple character.
func script(s string) (string, int, bool) {
	if len(s) < 2 {
		return "", 0, false
	}
	if s[1] == '{' {
		return braced(s, 1)
	}
	r, size := utf8.DecodeRuneInString(s[1:])
	if !isSimple(r) {
		return "", 0, false
	}
	return s[1 : 1+size], 1 + size, true
}

// braced extracts the content of the group opening at s[open], which must be
// '{'. It returns the content and the offset just past the closing brace.
// Escaped braces (\{ and \}) do not change the depth.
func braced(s string, open int) (string, int, bool) {
	if open >= len(s) || s[open] != '{' {
		return "", 0, false
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}') {
				i++
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// isTrigger reports whether a notation command starts at s[i].
func isTrigger(s string, i int) bool {
	switch s[i] {
	case '^', '_':
		return true
	case '\\':
		rest := s[i:]
		return strings.HasPrefix(rest, cmdFrac) || strings.HasPrefix(rest, cmdSqrt)
	}
	return false
}

// nextTrigger returns the offset of the first trigger after s[0], or len(s).
func nextTrigger(s string) int {
	for i := 1; i < len(s); i++ {
		if isTrigger(s, i) {
			return i
		}
	}
	return len(s)
}

func isSimple(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '+', '-', '*', '/', '\'', '°', '′', '″':
		return true
	}
	return false
}
