package config

import (
	"fmt"
	"os"

	"github.com/dgallion1/studyhub/internal/formula"
	"gopkg.in/yaml.v3"
)

// LoadSymbols reads a YAML mapping of extra tokens, e.g.
//
//	\ohm: Ω
//	\angstrom: Å
//
// and returns formula.DefaultSymbols extended with it. An empty path
// returns the default table.
func LoadSymbols(path string) (*formula.SymbolTable, error) {
	if path == "" {
		return formula.DefaultSymbols, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}
	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse symbols file %s: %w", path, err)
	}
	table, err := formula.DefaultSymbols.Extend(extra)
	if err != nil {
		return nil, fmt.Errorf("symbols file %s: %w", path, err)
	}
	return table, nil
}
