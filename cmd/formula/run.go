package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dgallion1/studyhub/internal/config"
	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/handout"
	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/sheet"
)

// Exit codes.
const (
	exitOK       = 0
	exitProblems = 1 // validate found errors
	exitUsage    = 2
)

var errUsage = errors.New("usage")

type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	tty            bool
	symbols        *formula.SymbolTable
}

type command func(c *cli, args []string) error

var commands = map[string]command{
	"plain":         (*cli).plain,
	"render":        (*cli).render,
	"parse":         (*cli).parse,
	"validate":      (*cli).validate,
	"export-json":   (*cli).exportJSON,
	"convert":       (*cli).convert,
	"handout":       (*cli).handout,
	"symbols":       (*cli).listSymbols,
	"schema":        (*cli).schema,
	"create-sample": (*cli).createSample,
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, tty bool) int {
	fs := flag.NewFlagSet("formula", flag.ContinueOnError)
	fs.SetOutput(stderr)
	symbolsFile := fs.String("symbols", os.Getenv("SYMBOLS_FILE"), "YAML file of extra symbol tokens")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "formula: unknown command %q\n", fs.Arg(0))
		usage(stderr)
		return exitUsage
	}

	symbols, err := config.LoadSymbols(*symbolsFile)
	if err != nil {
		fmt.Fprintf(stderr, "formula: %v\n", err)
		return exitUsage
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, tty: tty, symbols: symbols}
	err = cmd(c, fs.Args()[1:])
	var problems problemsError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	case errors.As(err, &problems):
		return exitProblems
	default:
		fmt.Fprintf(stderr, "formula %s: %v\n", fs.Arg(0), err)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: formula [-symbols file.yaml] <command> [flags] [args]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "commands: %s\n", strings.Join(names, ", "))
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// formulas returns the formula arguments, or the non-blank lines of stdin
// when there are none.
func (c *cli) formulas(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	scanner := bufio.NewScanner(c.stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

func (c *cli) plain(args []string) error {
	fs := c.flags("plain")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	formulas, err := c.formulas(fs.Args())
	if err != nil {
		return err
	}
	for _, f := range formulas {
		fmt.Fprintln(c.stdout, formula.ToPlainText(c.symbols.Parse(f)))
	}
	return nil
}

func (c *cli) render(args []string) error {
	fs := c.flags("render")
	size := fs.String("size", "medium", "display size: small, medium or large")
	color := fs.String("color", "", "CSS color for the formula")
	forceHTML := fs.Bool("html", false, "print HTML even when stdout is a terminal")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	sz, err := render.ParseSize(*size)
	if err != nil {
		return err
	}
	opts := render.Options{Size: sz, Color: *color}

	formulas, err := c.formulas(fs.Args())
	if err != nil {
		return err
	}
	for _, f := range formulas {
		segs := c.symbols.Parse(f)
		if c.tty && !*forceHTML {
			fmt.Fprintln(c.stdout, formula.ToPlainText(segs))
			writeTree(c.stdout, segs, 1)
			continue
		}
		if err := render.Render(c.stdout, segs, opts); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout)
	}
	return nil
}

func (c *cli) parse(args []string) error {
	fs := c.flags("parse")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	formulas, err := c.formulas(fs.Args())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	for _, f := range formulas {
		if err := enc.Encode(formula.Tree(c.symbols.Parse(f))); err != nil {
			return err
		}
	}
	return nil
}

// problemsError reports that validation found errors. The problems have
// already been printed.
type problemsError int

func (e problemsError) Error() string { return fmt.Sprintf("%d errors", int(e)) }

func (c *cli) validate(args []string) error {
	fs := c.flags("validate")
	maxBytes := fs.Int("max-bytes", sheet.MaxFormulaBytes, "longest allowed formula_text in bytes")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: formula validate [-max-bytes n] <file>")
		return errUsage
	}
	s, err := readSheet(fs.Arg(0))
	if err != nil {
		return err
	}
	problems := sheet.ValidateLimit(s, *maxBytes)
	errs := 0
	for _, p := range problems {
		fmt.Fprintf(c.stdout, "%s: %s\n", fs.Arg(0), p)
		if p.Severity == sheet.SeverityError {
			errs++
		}
	}
	fmt.Fprintf(c.stdout, "%d formulas, %d problems\n", len(s.Entries), len(problems))
	if errs > 0 {
		return problemsError(errs)
	}
	return nil
}

type exportedEntry struct {
	sheet.Entry
	Plain string `json:"plain"`
	HTML  string `json:"html"`
}

func (c *cli) exportJSON(args []string) error {
	fs := c.flags("export-json")
	size := fs.String("size", "medium", "display size: small, medium or large")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: formula export-json [-size s] <file>")
		return errUsage
	}
	sz, err := render.ParseSize(*size)
	if err != nil {
		return err
	}
	s, err := readSheet(fs.Arg(0))
	if err != nil {
		return err
	}

	entries := make([]exportedEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		segs := c.symbols.Parse(e.Text)
		entries = append(entries, exportedEntry{
			Entry: *e,
			Plain: formula.ToPlainText(segs),
			HTML:  render.RenderString(segs, render.Options{Size: sz}),
		})
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"title":    s.Title,
		"topics":   s.Topics(),
		"formulas": entries,
	})
}

func (c *cli) convert(args []string) error {
	fs := c.flags("convert")
	to := fs.String("to", "csv", "output format: csv or yaml")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: formula convert -to csv|yaml <file>")
		return errUsage
	}
	s, err := readSheet(fs.Arg(0))
	if err != nil {
		return err
	}
	switch *to {
	case "csv":
		return parser.WriteCSV(c.stdout, s)
	case "yaml", "yml":
		return parser.WriteYAML(c.stdout, s)
	}
	return fmt.Errorf("unknown output format %q", *to)
}

func (c *cli) handout(args []string) error {
	fs := c.flags("handout")
	out := fs.String("o", "", "output .docx path (default: stdout)")
	title := fs.String("title", "", "override the sheet title")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: formula handout -o out.docx <file>")
		return errUsage
	}
	s, err := readSheet(fs.Arg(0))
	if err != nil {
		return err
	}
	if *title != "" {
		s.Title = *title
	}

	if *out == "" {
		return handout.Write(c.stdout, s, c.symbols)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := handout.Write(f, s, c.symbols); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *cli) listSymbols(args []string) error {
	for _, tok := range c.symbols.Tokens() {
		sym, _ := c.symbols.Lookup(tok)
		fmt.Fprintf(c.stdout, "%s\t%s\n", tok, sym)
	}
	return nil
}

func readSheet(path string) (*sheet.Sheet, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = true
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := p.Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
