package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/formula"
)

// writeTree prints segs one per line, indented two spaces per level.
func writeTree(w io.Writer, segs []formula.Segment, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, seg := range segs {
		switch s := seg.(type) {
		case formula.Text:
			fmt.Fprintf(w, "%stext %q\n", indent, s.Content)
		case formula.Superscript:
			fmt.Fprintf(w, "%ssuperscript\n", indent)
			writeTree(w, s.Content, depth+1)
		case formula.Subscript:
			fmt.Fprintf(w, "%ssubscript\n", indent)
			writeTree(w, s.Content, depth+1)
		case formula.Fraction:
			fmt.Fprintf(w, "%sfraction\n", indent)
			fmt.Fprintf(w, "%s  numerator\n", indent)
			writeTree(w, s.Numerator, depth+2)
			fmt.Fprintf(w, "%s  denominator\n", indent)
			writeTree(w, s.Denominator, depth+2)
		case formula.Sqrt:
			fmt.Fprintf(w, "%ssqrt\n", indent)
			writeTree(w, s.Content, depth+1)
		}
	}
}
