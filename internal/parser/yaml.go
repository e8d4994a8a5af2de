package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/studyhub/internal/sheet"
	"gopkg.in/yaml.v3"
)

// YAMLParser handles YAML formula sheets. The document is either a list of
// entries or a mapping with a title, a default topic_id and a formulas list.
type YAMLParser struct{}

type yamlSheet struct {
	Title    string    `yaml:"title"`
	TopicID  string    `yaml:"topic_id"`
	Formulas yaml.Node `yaml:"formulas"`
}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*sheet.Sheet, error) {
	s := &sheet.Sheet{Title: titleFromFilename(filename)}

	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return s, nil
	}

	doc := root.Content[0]
	var topic string
	switch doc.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		var ys yamlSheet
		if err := doc.Decode(&ys); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if ys.Title != "" {
			s.Title = ys.Title
		}
		topic = ys.TopicID
		doc = &ys.Formulas
		if doc.Kind == 0 {
			return s, nil
		}
		if doc.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("parse yaml: line %d: formulas must be a list", doc.Line)
		}
	default:
		return nil, fmt.Errorf("parse yaml: line %d: expected a list or a mapping", doc.Line)
	}

	for _, item := range doc.Content {
		var e sheet.Entry
		if err := item.Decode(&e); err != nil {
			return nil, fmt.Errorf("parse yaml: line %d: %w", item.Line, err)
		}
		e.Line = item.Line
		if e.TopicID == "" {
			e.TopicID = topic
		}
		s.Entries = append(s.Entries, &e)
	}
	return s, nil
}

// WriteYAML writes s as a mapping with a title and a formulas list.
func WriteYAML(w io.Writer, s *sheet.Sheet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	out := struct {
		Title    string         `yaml:"title,omitempty"`
		Formulas []*sheet.Entry `yaml:"formulas"`
	}{s.Title, s.Entries}
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
