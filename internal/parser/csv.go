package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/studyhub/internal/sheet"
)

// CSVParser handles exports of the Formulas sheet. The first row is the
// header; columns are matched by name so their order does not matter.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*sheet.Sheet, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	s := &sheet.Sheet{Title: titleFromFilename(filename)}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, req := range sheet.RequiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("parse csv: missing required column %q", req)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}

		e := &sheet.Entry{
			ID:      get("formula_id"),
			TopicID: get("topic_id"),
			Text:    get("formula_text"),
			Label:   get("formula_label"),
			Line:    line,
		}
		for i := 1; i <= sheet.MaxVariables; i++ {
			v := sheet.Variable{
				Symbol: get(fmt.Sprintf("variable_%d_symbol", i)),
				Name:   get(fmt.Sprintf("variable_%d_name", i)),
				Unit:   get(fmt.Sprintf("variable_%d_unit", i)),
			}
			if v != (sheet.Variable{}) {
				e.Variables = append(e.Variables, v)
			}
		}
		s.Entries = append(s.Entries, e)
	}
	return s, nil
}

// WriteCSV writes s in the Formulas sheet layout, header first.
func WriteCSV(w io.Writer, s *sheet.Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Columns); err != nil {
		return err
	}
	for _, e := range s.Entries {
		row := []string{e.ID, e.TopicID, e.Text, e.Label}
		for i := 0; i < sheet.MaxVariables; i++ {
			var v sheet.Variable
			if i < len(e.Variables) {
				v = e.Variables[i]
			}
			row = append(row, v.Symbol, v.Name, v.Unit)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
