package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/sheet"
)

func (c *cli) schema(args []string) error {
	fs := c.flags("schema")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	fmt.Fprintln(c.stdout, "Formulas")
	fmt.Fprintf(c.stdout, "  Columns:  %s\n", strings.Join(sheet.Columns, ", "))
	fmt.Fprintf(c.stdout, "  Required: %s\n", strings.Join(sheet.RequiredColumns, ", "))
	fmt.Fprintf(c.stdout, "  Formula text limit: %d bytes\n", sheet.MaxFormulaBytes)
	fmt.Fprintf(c.stdout, "  Loose formats number missing ids as %s\n", sheet.DefaultID("<topic_id>", 1))
	return nil
}

func (c *cli) createSample(args []string) error {
	fs := c.flags("create-sample")
	out := fs.String("o", "", "output path; .csv, .yaml or .yml (default: stdout)")
	to := fs.String("to", "csv", "output format when writing to stdout: csv or yaml")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	format := *to
	if *out != "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(*out)), ".")
	}
	write := parser.WriteCSV
	switch format {
	case "csv":
	case "yaml", "yml":
		write = parser.WriteYAML
	default:
		fmt.Fprintf(c.stderr, "create-sample: unsupported format %q (want csv or yaml)\n", format)
		return errUsage
	}

	s := sampleSheet()
	if *out == "" {
		return write(c.stdout, s)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := write(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "wrote %d formulas to %s\n", len(s.Entries), *out)
	return nil
}

// sampleSheet returns a small Formulas sheet covering two topics.
func sampleSheet() *sheet.Sheet {
	s := &sheet.Sheet{
		Title: "StudyHub sample formulas",
		Entries: []*sheet.Entry{
			{TopicID: "phys-t2", Text: `W = F \cdot d`, Label: "Work", Variables: []sheet.Variable{
				{Symbol: "W", Name: "Work", Unit: "J"},
				{Symbol: "F", Name: "Force", Unit: "N"},
				{Symbol: "d", Name: "Distance", Unit: "m"},
			}},
			{TopicID: "phys-t2", Text: `KE = \frac{1}{2}mv^2`, Label: "Kinetic Energy", Variables: []sheet.Variable{
				{Symbol: "KE", Name: "Energy", Unit: "J"},
				{Symbol: "m", Name: "Mass", Unit: "kg"},
				{Symbol: "v", Name: "Velocity", Unit: "m/s"},
			}},
			{TopicID: "math-t3", Text: `P(A) = \frac{n(A)}{n(S)}`, Label: "Probability", Variables: []sheet.Variable{
				{Symbol: "P", Name: "Probability"},
				{Symbol: "n(A)", Name: "Favorable"},
				{Symbol: "n(S)", Name: "Total"},
			}},
			{TopicID: "math-t3", Text: `P(A \cap B) = P(A) \times P(B)`, Label: "Independent Events", Variables: []sheet.Variable{
				{Symbol: "P", Name: "Probability"},
				{Symbol: "A", Name: "Event A"},
				{Symbol: "B", Name: "Event B"},
			}},
		},
	}
	s.FillIDs()
	return s
}
