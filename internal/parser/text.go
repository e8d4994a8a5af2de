package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/sheet"
)

// TextParser handles plain text files: one formula per line, optionally
// prefixed with "Label: ". Lines starting with # start a new topic.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*sheet.Sheet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	c := newCollector(titleFromFilename(filename))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			c.heading(strings.TrimLeft(line, "# "))
		default:
			c.add(line, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c.done(), nil
}
