package sheet

import (
	"strings"
	"testing"
)

func TestFillIDs_NumbersPerTopic(t *testing.T) {
	s := &Sheet{Entries: []*Entry{
		{TopicID: "phys-t2", Text: "W = F d"},
		{TopicID: "math-t2", Text: "a^2 + b^2 = c^2"},
		{ID: "custom", TopicID: "phys-t2", Text: "P = W/t"},
		{TopicID: "phys-t2", Text: `KE = \frac{1}{2}mv^2`},
	}}
	s.FillIDs()
	want := []string{"form-phys-t2-1", "form-math-t2-1", "custom", "form-phys-t2-3"}
	for i, w := range want {
		if s.Entries[i].ID != w {
			t.Errorf("entry %d: expected id %q, got %q", i, w, s.Entries[i].ID)
		}
	}
}

func TestTopicsAndByTopic(t *testing.T) {
	s := &Sheet{Entries: []*Entry{
		{ID: "1", TopicID: "b"},
		{ID: "2", TopicID: "a"},
		{ID: "3", TopicID: "b"},
	}}
	topics := s.Topics()
	if strings.Join(topics, ",") != "b,a" {
		t.Errorf("expected topics in first-seen order, got %v", topics)
	}
	if got := s.ByTopic("b"); len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("unexpected entries for topic b: %v", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Work & Energy", "work-energy"},
		{"  Newton's Laws ", "newton-s-laws"},
		{"phys-t1", "phys-t1"},
		{"---", ""},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func validEntry() *Entry {
	return &Entry{
		ID:      "form-phys-t2-1",
		TopicID: "phys-t2",
		Text:    `KE = \frac{1}{2}mv^2`,
		Label:   "Kinetic Energy",
		Variables: []Variable{
			{Symbol: "KE", Name: "Energy", Unit: "J"},
			{Symbol: "m", Name: "Mass", Unit: "kg"},
		},
	}
}

func TestValidateEntry_ValidPasses(t *testing.T) {
	if problems := ValidateEntry(validEntry()); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidateEntry_Nil(t *testing.T) {
	if !HasErrors(ValidateEntry(nil)) {
		t.Error("expected nil entry to fail validation")
	}
}

func TestValidateEntry_MissingRequired(t *testing.T) {
	e := &Entry{Line: 4}
	problems := ValidateEntry(e)
	fields := map[string]bool{}
	for _, p := range problems {
		if p.Severity != SeverityError {
			t.Errorf("expected error severity, got %v", p)
		}
		if p.Line != 4 {
			t.Errorf("expected line 4, got %d", p.Line)
		}
		fields[p.Field] = true
	}
	for _, f := range RequiredColumns {
		if !fields[f] {
			t.Errorf("expected a problem for %s, got %v", f, problems)
		}
	}
}

func TestValidateEntry_TooLong(t *testing.T) {
	e := validEntry()
	e.Text = strings.Repeat("x", MaxFormulaBytes+1)
	if !HasErrors(ValidateEntry(e)) {
		t.Error("expected oversized formula to fail")
	}
}

func TestValidateLimit(t *testing.T) {
	e := validEntry()
	e.Text = strings.Repeat("x", MaxFormulaBytes+1)
	s := &Sheet{Entries: []*Entry{e}}
	if HasErrors(ValidateLimit(s, 2*MaxFormulaBytes)) {
		t.Error("expected a raised limit to accept the formula")
	}
	if !HasErrors(ValidateLimit(s, 0)) {
		t.Error("expected a zero limit to fall back to the default")
	}
	e.Text = "abcdef"
	problems := ValidateLimit(s, 5)
	if !HasErrors(problems) || problems[0].Message != "longer than 5 bytes" {
		t.Errorf("expected a 5 byte limit to reject the formula, got %v", problems)
	}
}

func TestValidateEntry_UnbalancedBracesWarns(t *testing.T) {
	e := validEntry()
	e.Text = `\frac{1}{2`
	problems := ValidateEntry(e)
	if len(problems) != 1 || problems[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %v", problems)
	}
	if HasErrors(problems) {
		t.Error("unbalanced braces should not be an error")
	}

	e.Text = `\{ x \}`
	if problems := ValidateEntry(e); len(problems) != 0 {
		t.Errorf("escaped braces should balance, got %v", problems)
	}
}

func TestValidateEntry_VariableWithoutSymbol(t *testing.T) {
	e := validEntry()
	e.Variables = append(e.Variables, Variable{Name: "Velocity", Unit: "m/s"})
	problems := ValidateEntry(e)
	if len(problems) != 1 || problems[0].Field != "variable_3_symbol" {
		t.Errorf("expected variable_3_symbol warning, got %v", problems)
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	a, b := validEntry(), validEntry()
	a.Line, b.Line = 2, 5
	problems := Validate(&Sheet{Entries: []*Entry{a, b}})
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
	if problems[0].Line != 5 || !strings.Contains(problems[0].Message, "line 2") {
		t.Errorf("unexpected duplicate report: %v", problems[0])
	}
}

func TestProblemString(t *testing.T) {
	p := Problem{Line: 3, ID: "f1", Field: "topic_id", Message: "required", Severity: SeverityError}
	if got := p.String(); got != "error line 3 f1 [topic_id]: required" {
		t.Errorf("unexpected string %q", got)
	}
}
