// Command formula parses, renders and converts formula notation and formula
// sheets from the command line.
//
//	formula [-symbols file.yaml] <command> [flags] [args]
//
// Commands:
//
//	plain <formula>...           print the plain-text form
//	render [-size s] [-color c] [-html] <formula>
//	                             print HTML, or the plain form and segment
//	                             tree when stdout is a terminal
//	parse <formula>              print the segment tree as JSON
//	validate [-max-bytes n] <file>
//	                             report problems in a formula sheet
//	export-json [-size s] <file> print a sheet with rendered entries as JSON
//	convert -to csv|yaml <file>  rewrite a sheet in another format
//	handout -o out.docx <file>   write a DOCX handout for a sheet
//	symbols                      list the symbol table
//	schema                       print the Formulas sheet columns
//	create-sample [-o file]      write a sample sheet as CSV or YAML
//
// Formula arguments may be omitted, in which case each line of stdin is
// processed in turn.
package main

import (
	"os"

	"github.com/mattn/go-isatty"
)

func main() {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, tty))
}
