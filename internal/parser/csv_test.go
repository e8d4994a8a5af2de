package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/studyhub/internal/sheet"
	"github.com/google/go-cmp/cmp"
)

const sampleCSV = `formula_id,topic_id,formula_text,formula_label,variable_1_symbol,variable_1_name,variable_1_unit,variable_2_symbol,variable_2_name,variable_2_unit,variable_3_symbol,variable_3_name,variable_3_unit
form-phys-t2-1,phys-t2,KE = \frac{1}{2}mv^2,Kinetic Energy,KE,Kinetic energy,J,m,Mass,kg,v,Velocity,m/s
form-math-t3-1,math-t3,P(A) = \frac{n(A)}{n(S)},Probability,,,,,,,,,

form-phys-t2-2,phys-t2,"W = F \cdot d",Work,W,Work,J,,,,,,
`

func TestCSVParser(t *testing.T) {
	s, err := (&CSVParser{}).Parse(strings.NewReader(sampleCSV), "Formulas.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &sheet.Sheet{
		Title: "Formulas",
		Entries: []*sheet.Entry{
			{
				ID: "form-phys-t2-1", TopicID: "phys-t2", Text: `KE = \frac{1}{2}mv^2`, Label: "Kinetic Energy", Line: 2,
				Variables: []sheet.Variable{
					{Symbol: "KE", Name: "Kinetic energy", Unit: "J"},
					{Symbol: "m", Name: "Mass", Unit: "kg"},
					{Symbol: "v", Name: "Velocity", Unit: "m/s"},
				},
			},
			{ID: "form-math-t3-1", TopicID: "math-t3", Text: `P(A) = \frac{n(A)}{n(S)}`, Label: "Probability", Line: 3},
			{
				ID: "form-phys-t2-2", TopicID: "phys-t2", Text: `W = F \cdot d`, Label: "Work", Line: 5,
				Variables: []sheet.Variable{{Symbol: "W", Name: "Work", Unit: "J"}},
			},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("unexpected sheet (-want +got):\n%s", diff)
	}
}

func TestCSVParser_ColumnOrderAndMissingOptional(t *testing.T) {
	input := "formula_text,topic_id,formula_id\nx^2,alg,f1\n"
	s, err := (&CSVParser{}).Parse(strings.NewReader(input), "f.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(s.Entries))
	}
	if e := s.Entries[0]; e.ID != "f1" || e.TopicID != "alg" || e.Text != "x^2" || e.Label != "" {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestCSVParser_MissingRequiredColumn(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader("formula_id,formula_text\nf1,x\n"), "f.csv")
	if err == nil || !strings.Contains(err.Error(), "topic_id") {
		t.Errorf("expected missing topic_id error, got %v", err)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	s, err := (&CSVParser{}).Parse(strings.NewReader(""), "f.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(s.Entries))
	}
}

func TestWriteCSV_ReadsBack(t *testing.T) {
	orig, err := (&CSVParser{}).Parse(strings.NewReader(sampleCSV), "Formulas.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, orig); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := (&CSVParser{}).Parse(&buf, "Formulas.csv")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	ignoreLine := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Line"
	}, cmp.Ignore())
	if diff := cmp.Diff(orig, back, ignoreLine); diff != "" {
		t.Errorf("round trip mismatch (-orig +back):\n%s", diff)
	}
}
