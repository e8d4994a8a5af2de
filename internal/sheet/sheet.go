package sheet

import (
	"fmt"
	"regexp"
	"strings"
)

// Sheet is a parsed formula sheet.
type Sheet struct {
	Title   string   // Sheet title (from metadata or filename)
	Entries []*Entry // Formulas in source order
}

// Entry is one formula row.
type Entry struct {
	ID        string     `json:"formula_id" yaml:"formula_id"`
	TopicID   string     `json:"topic_id" yaml:"topic_id"`
	Text      string     `json:"formula_text" yaml:"formula_text"`
	Label     string     `json:"formula_label,omitempty" yaml:"formula_label,omitempty"`
	Variables []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
	Line      int        `json:"line,omitempty" yaml:"-"` // Source row/line/page (0 if N/A)
}

// Variable explains one symbol used in a formula.
type Variable struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Unit   string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Columns is the header of the Formulas sheet.
var Columns = []string{
	"formula_id", "topic_id", "formula_text", "formula_label",
	"variable_1_symbol", "variable_1_name", "variable_1_unit",
	"variable_2_symbol", "variable_2_name", "variable_2_unit",
	"variable_3_symbol", "variable_3_name", "variable_3_unit",
}

// RequiredColumns must be present in every Formulas sheet.
var RequiredColumns = []string{"formula_id", "topic_id", "formula_text"}

// MaxVariables is the number of variable column groups in a sheet.
const MaxVariables = 3

// DefaultID returns the id assigned to the i-th (1-based) formula of a topic
// when the source does not carry one.
func DefaultID(topicID string, i int) string {
	return fmt.Sprintf("form-%s-%d", topicID, i)
}

// FillIDs assigns DefaultID to entries without an id, numbering per topic.
func (s *Sheet) FillIDs() {
	counts := make(map[string]int)
	for _, e := range s.Entries {
		counts[e.TopicID]++
		if e.ID == "" {
			e.ID = DefaultID(e.TopicID, counts[e.TopicID])
		}
	}
}

// Topics returns topic ids in first-seen order.
func (s *Sheet) Topics() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.Entries {
		if !seen[e.TopicID] {
			seen[e.TopicID] = true
			out = append(out, e.TopicID)
		}
	}
	return out
}

// ByTopic returns the entries of one topic in source order.
func (s *Sheet) ByTopic(topicID string) []*Entry {
	var out []*Entry
	for _, e := range s.Entries {
		if e.TopicID == topicID {
			out = append(out, e)
		}
	}
	return out
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
