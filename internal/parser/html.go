package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/sheet"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings set the topic and every element
// with class "formula" becomes an entry. The optional data-id, data-topic
// and data-label attributes override the derived values.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*sheet.Sheet, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}
	c := newCollector(title)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				c.heading(textContent(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "head":
				return
			}
			if hasClass(n, "formula") {
				addHTMLFormula(c, n)
				return
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)

	return c.done(), nil
}

func addHTMLFormula(c *collector, n *html.Node) {
	before := len(c.sheet.Entries)
	c.add(textContent(n), 0)
	if len(c.sheet.Entries) == before {
		return
	}
	e := c.sheet.Entries[before]
	if v := attr(n, "data-id"); v != "" {
		e.ID = v
	}
	if v := attr(n, "data-topic"); v != "" {
		e.TopicID = v
	}
	if v := attr(n, "data-label"); v != "" {
		e.Label = v
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
