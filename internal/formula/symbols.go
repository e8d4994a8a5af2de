package formula

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// SymbolTable maps backslash-prefixed tokens to their display strings.
// A table is immutable once built and safe for concurrent use.
type SymbolTable struct {
	symbols map[string]string
	ordered []string // longest token first
	digest  string
}

var defaultSymbols = map[string]string{
	// Greek, lower case
	`\alpha`:      "α",
	`\beta`:       "β",
	`\gamma`:      "γ",
	`\delta`:      "δ",
	`\epsilon`:    "ε",
	`\varepsilon`: "ε",
	`\zeta`:       "ζ",
	`\eta`:        "η",
	`\theta`:      "θ",
	`\iota`:       "ι",
	`\kappa`:      "κ",
	`\lambda`:     "λ",
	`\mu`:         "μ",
	`\nu`:         "ν",
	`\xi`:         "ξ",
	`\pi`:         "π",
	`\rho`:        "ρ",
	`\sigma`:      "σ",
	`\tau`:        "τ",
	`\upsilon`:    "υ",
	`\phi`:        "φ",
	`\varphi`:     "φ",
	`\chi`:        "χ",
	`\psi`:        "ψ",
	`\omega`:      "ω",

	// Greek, upper case
	`\Gamma`:   "Γ",
	`\Delta`:   "Δ",
	`\Theta`:   "Θ",
	`\Lambda`:  "Λ",
	`\Xi`:      "Ξ",
	`\Pi`:      "Π",
	`\Sigma`:   "Σ",
	`\Upsilon`: "Υ",
	`\Phi`:     "Φ",
	`\Psi`:     "Ψ",
	`\Omega`:   "Ω",

	// Operators and relations
	`\times`:     "×",
	`\cdot`:      "·",
	`\cdots`:     "⋯",
	`\ldots`:     "…",
	`\div`:       "÷",
	`\pm`:        "±",
	`\mp`:        "∓",
	`\le`:        "≤",
	`\leq`:       "≤",
	`\ge`:        "≥",
	`\geq`:       "≥",
	`\ne`:        "≠",
	`\neq`:       "≠",
	`\approx`:    "≈",
	`\equiv`:     "≡",
	`\sim`:       "∼",
	`\propto`:    "∝",
	`\infty`:     "∞",
	`\partial`:   "∂",
	`\nabla`:     "∇",
	`\sum`:       "∑",
	`\prod`:      "∏",
	`\int`:       "∫",
	`\in`:        "∈",
	`\notin`:     "∉",
	`\subset`:    "⊂",
	`\cup`:       "∪",
	`\cap`:       "∩",
	`\angle`:     "∠",
	`\perp`:      "⊥",
	`\parallel`:  "∥",
	`\therefore`: "∴",
	`\because`:   "∵",
	`\degree`:    "°",
	`\circ`:      "∘",
	`\prime`:     "′",
	`\hbar`:      "ℏ",
	`\ell`:       "ℓ",

	// Arrows
	`\rightarrow`:        "→",
	`\leftarrow`:         "←",
	`\leftrightarrow`:    "↔",
	`\Rightarrow`:        "⇒",
	`\Leftarrow`:         "⇐",
	`\Leftrightarrow`:    "⇔",
	`\rightleftharpoons`: "⇌",
	`\uparrow`:           "↑",
	`\downarrow`:         "↓",
	`\to`:                "→",
}

// DefaultSymbols is the built-in table used by Substitute and Parse.
var DefaultSymbols = mustSymbolTable(defaultSymbols)

// NewSymbolTable builds a table from token/display pairs. Tokens must start
// with a backslash and display strings must not contain one, so that
// substituting an already substituted string changes nothing.
func NewSymbolTable(symbols map[string]string) (*SymbolTable, error) {
	t := &SymbolTable{symbols: make(map[string]string, len(symbols))}
	for tok, sym := range symbols {
		if len(tok) < 2 || tok[0] != '\\' {
			return nil, fmt.Errorf("symbol token %q must start with a backslash", tok)
		}
		if strings.Contains(sym, `\`) {
			return nil, fmt.Errorf("symbol %q for %s must not contain a backslash", sym, tok)
		}
		if isCommand(tok) {
			return nil, fmt.Errorf("symbol token %s shadows a formula command", tok)
		}
		t.symbols[tok] = sym
	}
	t.ordered = make([]string, 0, len(t.symbols))
	for tok := range t.symbols {
		t.ordered = append(t.ordered, tok)
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		a, b := t.ordered[i], t.ordered[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	h := sha256.New()
	for _, tok := range t.ordered {
		fmt.Fprintf(h, "%s\x00%s\x00", tok, t.symbols[tok])
	}
	t.digest = hex.EncodeToString(h.Sum(nil))
	return t, nil
}

func mustSymbolTable(symbols map[string]string) *SymbolTable {
	t, err := NewSymbolTable(symbols)
	if err != nil {
		panic(err)
	}
	return t
}

// Extend returns a new table holding the receiver's entries plus extra.
// Entries in extra win on conflict.
func (t *SymbolTable) Extend(extra map[string]string) (*SymbolTable, error) {
	merged := make(map[string]string, len(t.symbols)+len(extra))
	for tok, sym := range t.symbols {
		merged[tok] = sym
	}
	for tok, sym := range extra {
		merged[tok] = sym
	}
	return NewSymbolTable(merged)
}

// Substitute replaces every known token in s with its display string,
// longest tokens first.
func (t *SymbolTable) Substitute(s string) string {
	if s == "" {
		return s
	}
	for _, tok := range t.ordered {
		if strings.Contains(s, tok) {
			s = strings.ReplaceAll(s, tok, t.symbols[tok])
		}
	}
	return s
}

// Lookup returns the display string for a token.
func (t *SymbolTable) Lookup(tok string) (string, bool) {
	sym, ok := t.symbols[tok]
	return sym, ok
}

// Len returns the number of tokens in the table.
func (t *SymbolTable) Len() int { return len(t.symbols) }

// Tokens returns all tokens in substitution order.
func (t *SymbolTable) Tokens() []string {
	out := make([]string, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Digest identifies the table's contents. Tables with the same
// token/display pairs have the same digest.
func (t *SymbolTable) Digest() string { return t.digest }

// Map returns a copy of the token/display pairs.
func (t *SymbolTable) Map() map[string]string {
	out := make(map[string]string, len(t.symbols))
	for tok, sym := range t.symbols {
		out[tok] = sym
	}
	return out
}

// Substitute applies DefaultSymbols to s.
func Substitute(s string) string {
	return DefaultSymbols.Substitute(s)
}

// isCommand reports whether tok is a prefix of a structural command, which
// would let substitution corrupt \frac or \sqrt before parsing.
func isCommand(tok string) bool {
	for _, cmd := range []string{cmdFrac, cmdSqrt} {
		if strings.HasPrefix(cmd, tok) {
			return true
		}
	}
	return false
}
