package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/studyhub/internal/sheet"
	"github.com/google/go-cmp/cmp"
)

func TestYAMLParser_Mapping(t *testing.T) {
	input := `title: Physics Formulas
topic_id: phys-t2
formulas:
  - formula_id: f1
    formula_text: 'KE = \frac{1}{2}mv^2'
    formula_label: Kinetic Energy
    variables:
      - symbol: m
        name: Mass
        unit: kg
  - formula_id: f2
    topic_id: math-t1
    formula_text: a^2 + b^2 = c^2
`
	s, err := (&YAMLParser{}).Parse(strings.NewReader(input), "phys.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &sheet.Sheet{
		Title: "Physics Formulas",
		Entries: []*sheet.Entry{
			{
				ID: "f1", TopicID: "phys-t2", Text: `KE = \frac{1}{2}mv^2`, Label: "Kinetic Energy", Line: 4,
				Variables: []sheet.Variable{{Symbol: "m", Name: "Mass", Unit: "kg"}},
			},
			{ID: "f2", TopicID: "math-t1", Text: "a^2 + b^2 = c^2", Line: 11},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("unexpected sheet (-want +got):\n%s", diff)
	}
}

func TestYAMLParser_List(t *testing.T) {
	input := "- formula_id: f1\n  topic_id: t\n  formula_text: x_1\n"
	s, err := (&YAMLParser{}).Parse(strings.NewReader(input), "list.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "list" || len(s.Entries) != 1 || s.Entries[0].Text != "x_1" {
		t.Errorf("unexpected sheet %+v", s)
	}
}

func TestYAMLParser_Errors(t *testing.T) {
	inputs := []string{
		"just a string\n",
		"formulas: nope\n",
		"- formula_id: [1, 2]\n",
		"key: [unclosed\n",
	}
	for _, in := range inputs {
		if _, err := (&YAMLParser{}).Parse(strings.NewReader(in), "bad.yaml"); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestYAMLParser_Empty(t *testing.T) {
	s, err := (&YAMLParser{}).Parse(strings.NewReader(""), "e.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(s.Entries))
	}
}

func TestWriteYAML_ReadsBack(t *testing.T) {
	orig := &sheet.Sheet{
		Title: "Mixed",
		Entries: []*sheet.Entry{
			{ID: "a", TopicID: "t1", Text: `\sqrt{x}`, Label: "Root", Variables: []sheet.Variable{{Symbol: "x"}}},
			{ID: "b", TopicID: "t2", Text: "y: z"},
		},
	}
	var buf bytes.Buffer
	if err := WriteYAML(&buf, orig); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := (&YAMLParser{}).Parse(&buf, "x.yaml")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for _, e := range back.Entries {
		e.Line = 0
	}
	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("round trip mismatch (-orig +back):\n%s", diff)
	}
}
