package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_FencedFormulaBlocks(t *testing.T) {
	input := "# Mechanics\n" +
		"\n" +
		"Some prose with $x^2$ that is not collected.\n" +
		"\n" +
		"```formula\n" +
		"Force: F = ma\n" +
		"KE = \\frac{1}{2}mv^2\n" +
		"```\n" +
		"\n" +
		"## Waves\n" +
		"\n" +
		"```go\n" +
		"x := a^b\n" +
		"```\n" +
		"\n" +
		"```math\n" +
		"v = f\\lambda\n" +
		"```\n"

	s, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "physics.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "physics" {
		t.Errorf("expected title %q, got %q", "physics", s.Title)
	}
	if len(s.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(s.Entries), s.Entries)
	}

	force := s.Entries[0]
	if force.Label != "Force" || force.Text != "F = ma" || force.TopicID != "mechanics" {
		t.Errorf("unexpected first entry %+v", force)
	}
	if force.Line != 6 {
		t.Errorf("expected line 6, got %d", force.Line)
	}
	if s.Entries[1].Line != 7 {
		t.Errorf("expected line 7, got %d", s.Entries[1].Line)
	}
	waves := s.Entries[2]
	if waves.TopicID != "waves" || waves.Text != `v = f\lambda` {
		t.Errorf("unexpected last entry %+v", waves)
	}
	if waves.ID != "form-waves-1" {
		t.Errorf("expected default id, got %q", waves.ID)
	}
}

func TestMarkdownParser_NoHeadingsUsesTitleTopic(t *testing.T) {
	input := "```formula\na^2 + b^2 = c^2\n```\n"
	s, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "Pythagoras.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 1 || s.Entries[0].TopicID != "pythagoras" {
		t.Fatalf("expected one entry under the title topic, got %+v", s.Entries)
	}
}

func TestMarkdownParser_NestedBlocks(t *testing.T) {
	input := "- item\n\n  ```formula\n  E = mc^2\n  ```\n"
	s, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 1 || s.Entries[0].Text != "E = mc^2" {
		t.Errorf("expected the nested block to be read, got %+v", s.Entries)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	s, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(s.Entries))
	}
	if s.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", s.Title)
	}
}
