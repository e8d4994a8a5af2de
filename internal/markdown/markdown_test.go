package markdown

import (
	"strings"
	"testing"

	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/render"
)

func convert(t *testing.T, ext *Extension, src string) string {
	t.Helper()
	out, err := ext.Convert([]byte(src))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return string(out)
}

func TestInlineFormula(t *testing.T) {
	ext := &Extension{Options: render.Options{Size: render.Medium}}
	got := convert(t, ext, "Energy $E = mc^2$ is famous.")
	want := "<p>Energy " + render.RenderString(formula.Parse("E = mc^2"), ext.Options) + " is famous.</p>\n"
	if got != want {
		t.Errorf("unexpected html\n got: %s\nwant: %s", got, want)
	}
}

func TestInlineFormula_NotTriggered(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"currency", "costs $5 and $10", "<p>costs $5 and $10</p>\n"},
		{"escaped", `\$x$ stays`, "<p>$x$ stays</p>\n"},
		{"unclosed", "a $b c", "<p>a $b c</p>\n"},
		{"space after opener", "a $ b$ c", "<p>a $ b$ c</p>\n"},
		{"code span", "`$x^2$`", "<p><code>$x^2$</code></p>\n"},
	}
	ext := &Extension{}
	for _, tt := range tests {
		if got := convert(t, ext, tt.src); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormulaBlock(t *testing.T) {
	src := "# Sheet\n\n```formula\nF = ma\n\n\\sqrt{2}\n```\n\n```go\nx := 1\n```\n"
	ext := &Extension{Options: render.Options{Size: render.Large}}
	got := convert(t, ext, src)

	if !strings.Contains(got, "<h1>Sheet</h1>") {
		t.Errorf("expected ordinary markdown preserved: %s", got)
	}
	if strings.Count(got, `<div class="formula-line">`) != 2 {
		t.Errorf("expected two formula lines (blank skipped): %s", got)
	}
	if !strings.Contains(got, render.RenderString(formula.Parse(`\sqrt{2}`), ext.Options)) {
		t.Errorf("expected rendered radical: %s", got)
	}
	if !strings.Contains(got, `<code class="language-go">x := 1`) {
		t.Errorf("expected other fenced blocks untouched: %s", got)
	}
	if strings.Contains(got, "language-formula") {
		t.Errorf("formula block rendered as code: %s", got)
	}
}

func TestCustomSymbols(t *testing.T) {
	table, err := formula.DefaultSymbols.Extend(map[string]string{`\ohm`: "Ω"})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	got := convert(t, &Extension{Symbols: table}, `R = 5 $\ohm$`)
	if !strings.Contains(got, ">Ω</span>") {
		t.Errorf("expected custom symbol substituted: %s", got)
	}
	got = convert(t, &Extension{}, `R = 5 $\ohm$`)
	if !strings.Contains(got, `>\ohm</span>`) {
		t.Errorf("expected unknown command left literal: %s", got)
	}
}

func TestInlineEnd(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"$x$", 2},
		{"$x^2$ rest", 4},
		{`$a \$ b$`, 7},
		{"$5", -1},
		{"$x", -1},
		{"$$x$$", -1},
		{"$x $", -1},
		{"$x$5 y$", 6},
		{"$a\nb$", -1},
		{"x$y$", -1},
	}
	for _, tt := range tests {
		if got := inlineEnd([]byte(tt.line)); got != tt.want {
			t.Errorf("inlineEnd(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}
