// Package handout writes a formula sheet as a printable .docx handout.
package handout

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/sheet"
	"github.com/fumiama/go-docx"
)

// Font sizes in half-points.
const (
	titleSize   = "36"
	headingSize = "28"
	formulaSize = "24"
	legendSize  = "20"
)

// LegendStyle marks the variable legend paragraph under each formula.
const LegendStyle = "Legend"

// Build lays out s as a document: a title, then one heading per topic with
// its formulas in plain-text form. Formula paragraphs carry
// parser.FormulaStyle, so a handout reads back as a sheet.
func Build(s *sheet.Sheet, symbols *formula.SymbolTable) *docx.Docx {
	if symbols == nil {
		symbols = formula.DefaultSymbols
	}
	doc := docx.New().WithDefaultTheme()

	if title := strings.TrimSpace(s.Title); title != "" {
		doc.AddParagraph().Style("Title").Justification("center").
			AddText(title).Bold().Size(titleSize)
	}

	for _, topic := range s.Topics() {
		doc.AddParagraph().Style("Heading1").AddText(topic).Bold().Size(headingSize)

		for _, e := range s.ByTopic(topic) {
			p := doc.AddParagraph().Style(parser.FormulaStyle)
			if e.Label != "" {
				preserveSpace(p.AddText(e.Label + ": ").Bold().Size(formulaSize))
			}
			p.AddText(formula.ToPlainText(symbols.Parse(e.Text))).Size(formulaSize)

			if legend := Legend(e.Variables); legend != "" {
				doc.AddParagraph().Style(LegendStyle).AddText(legend).Italic().Size(legendSize)
			}
		}
	}
	return doc
}

// Write builds the handout and writes the .docx bytes to w.
func Write(w io.Writer, s *sheet.Sheet, symbols *formula.SymbolTable) error {
	if _, err := Build(s, symbols).WriteTo(w); err != nil {
		return fmt.Errorf("write handout: %w", err)
	}
	return nil
}

// Legend describes the variables of a formula, e.g.
// "where m = Mass (kg), v = Velocity (m/s)". Variables without a symbol are
// skipped.
func Legend(vars []sheet.Variable) string {
	var parts []string
	for _, v := range vars {
		if v.Symbol == "" {
			continue
		}
		part := v.Symbol
		if v.Name != "" {
			part += " = " + v.Name
		}
		if v.Unit != "" {
			part += " (" + v.Unit + ")"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return ""
	}
	return "where " + strings.Join(parts, ", ")
}

// preserveSpace keeps the trailing space of a label run when rendered.
func preserveSpace(r *docx.Run) {
	for _, c := range r.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}
