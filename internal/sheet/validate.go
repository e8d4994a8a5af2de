package sheet

import (
	"fmt"
	"strings"
)

// Severity grades a validation problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one validation finding.
type Problem struct {
	Line     int      `json:"line,omitempty"`
	ID       string   `json:"formula_id,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (p Problem) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.Severity))
	if p.Line > 0 {
		fmt.Fprintf(&sb, " line %d", p.Line)
	}
	if p.ID != "" {
		fmt.Fprintf(&sb, " %s", p.ID)
	}
	if p.Field != "" {
		fmt.Fprintf(&sb, " [%s]", p.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(p.Message)
	return sb.String()
}

// MaxFormulaBytes is the default bound on formula_text for sheet rows.
// Sheet formulas are single display lines, so the bound is well below the
// request limit of the formula endpoints. Longer formulas are rejected
// before they reach the parser.
const MaxFormulaBytes = 500

// Validate checks a sheet for missing required fields, duplicate ids,
// oversized formulas and unbalanced braces. Brace problems are warnings
// since the parser degrades them to literal text.
func Validate(s *Sheet) []Problem {
	return ValidateLimit(s, MaxFormulaBytes)
}

// ValidateLimit is Validate with formula_text bounded by maxBytes. A
// non-positive maxBytes means MaxFormulaBytes.
func ValidateLimit(s *Sheet, maxBytes int) []Problem {
	var problems []Problem
	seen := make(map[string]int)
	for _, e := range s.Entries {
		problems = append(problems, ValidateEntryLimit(e, maxBytes)...)
		if e.ID == "" {
			continue
		}
		if first, dup := seen[e.ID]; dup {
			problems = append(problems, Problem{
				Line:     e.Line,
				ID:       e.ID,
				Field:    "formula_id",
				Message:  fmt.Sprintf("duplicate id (first seen on line %d)", first),
				Severity: SeverityError,
			})
			continue
		}
		seen[e.ID] = e.Line
	}
	return problems
}

// ValidateEntry checks a single entry.
func ValidateEntry(e *Entry) []Problem {
	return ValidateEntryLimit(e, MaxFormulaBytes)
}

// ValidateEntryLimit is ValidateEntry with formula_text bounded by maxBytes.
func ValidateEntryLimit(e *Entry, maxBytes int) []Problem {
	if maxBytes <= 0 {
		maxBytes = MaxFormulaBytes
	}
	if e == nil {
		return []Problem{{Message: "nil entry", Severity: SeverityError}}
	}
	var problems []Problem
	add := func(field, msg string, sev Severity) {
		problems = append(problems, Problem{Line: e.Line, ID: e.ID, Field: field, Message: msg, Severity: sev})
	}

	if strings.TrimSpace(e.ID) == "" {
		add("formula_id", "required", SeverityError)
	}
	if strings.TrimSpace(e.TopicID) == "" {
		add("topic_id", "required", SeverityError)
	}
	text := strings.TrimSpace(e.Text)
	switch {
	case text == "":
		add("formula_text", "required", SeverityError)
	case len(text) > maxBytes:
		add("formula_text", fmt.Sprintf("longer than %d bytes", maxBytes), SeverityError)
	default:
		if depth := braceBalance(text); depth != 0 {
			add("formula_text", fmt.Sprintf("unbalanced braces (%+d)", depth), SeverityWarning)
		}
	}
	if len(e.Variables) > MaxVariables {
		add("variables", fmt.Sprintf("more than %d variables", MaxVariables), SeverityWarning)
	}
	for i, v := range e.Variables {
		if strings.TrimSpace(v.Symbol) == "" && (v.Name != "" || v.Unit != "") {
			add(fmt.Sprintf("variable_%d_symbol", i+1), "name or unit given without a symbol", SeverityWarning)
		}
	}
	return problems
}

// HasErrors reports whether any problem is an error.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// braceBalance returns opening minus closing braces, ignoring \{ and \}.
func braceBalance(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}') {
				i++
			}
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}
