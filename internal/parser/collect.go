package parser

import (
	"strings"

	"github.com/dgallion1/studyhub/internal/sheet"
)

// DefaultTopic is used when a document has neither headings nor a usable
// title.
const DefaultTopic = "general"

// collector turns loose document text into sheet entries. Headings switch
// the current topic; formula lines become entries under it.
type collector struct {
	sheet *sheet.Sheet
	topic string
}

func newCollector(title string) *collector {
	topic := sheet.Slugify(title)
	if topic == "" {
		topic = DefaultTopic
	}
	return &collector{sheet: &sheet.Sheet{Title: title}, topic: topic}
}

func (c *collector) heading(title string) {
	if slug := sheet.Slugify(title); slug != "" {
		c.topic = slug
	}
}

// add records one formula line, splitting off a leading "Label: " if present.
func (c *collector) add(line string, lineNo int) {
	label, text := splitLabel(line)
	if text == "" {
		return
	}
	c.sheet.Entries = append(c.sheet.Entries, &sheet.Entry{
		TopicID: c.topic,
		Text:    text,
		Label:   label,
		Line:    lineNo,
	})
}

func (c *collector) done() *sheet.Sheet {
	c.sheet.FillIDs()
	return c.sheet
}

// splitLabel splits "Kinetic Energy: KE = ..." into label and formula. The
// part before ": " only counts as a label when it holds no formula syntax.
func splitLabel(line string) (label, text string) {
	line = strings.TrimSpace(line)
	i := strings.Index(line, ": ")
	if i <= 0 {
		return "", line
	}
	head := line[:i]
	if strings.ContainsAny(head, `\^_{}=`) {
		return "", line
	}
	return strings.TrimSpace(head), strings.TrimSpace(line[i+2:])
}

// looksLikeFormula reports whether free text in a prose document (docx, pdf)
// should be read as a formula.
func looksLikeFormula(s string) bool {
	_, text := splitLabel(s)
	return strings.ContainsAny(text, `\^_=`)
}
