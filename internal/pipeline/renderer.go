package pipeline

import (
	"log/slog"
	"time"

	"github.com/dgallion1/studyhub/internal/cache"
	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/stats"
)

// Operation names recorded in the latency stats.
const (
	OpParse  = "parse"
	OpRender = "render"
	OpSheet  = "sheet"
)

// Renderer turns formula text into HTML and plain text, memoizing through
// the render cache. It is shared by the API handlers and the workers.
type Renderer struct {
	symbols *formula.SymbolTable
	cache   *cache.Cache
	stats   *stats.Recorder
	log     *slog.Logger
}

// NewRenderer creates a Renderer. A nil symbol table means
// formula.DefaultSymbols; cache and stats may be nil.
func NewRenderer(symbols *formula.SymbolTable, c *cache.Cache, st *stats.Recorder, log *slog.Logger) *Renderer {
	if symbols == nil {
		symbols = formula.DefaultSymbols
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{symbols: symbols, cache: c, stats: st, log: log}
}

// Symbols returns the symbol table in use.
func (r *Renderer) Symbols() *formula.SymbolTable { return r.symbols }

// Stats returns the latency recorder, which may be nil.
func (r *Renderer) Stats() *stats.Recorder { return r.stats }

// Cache returns the render cache, which may be nil.
func (r *Renderer) Cache() *cache.Cache { return r.cache }

// Parse parses text with the renderer's symbol table.
func (r *Renderer) Parse(text string) []formula.Segment {
	start := time.Now()
	segs := r.symbols.Parse(text)
	r.record(OpParse, start)
	return segs
}

// Render returns the HTML and plain forms of text. Cache failures are
// logged and the formula is rendered directly.
func (r *Renderer) Render(text string, opts render.Options) cache.Rendered {
	if out, ok, err := r.cache.Get(r.symbols.Digest(), text, opts); err != nil {
		r.log.Warn("render cache read failed", "error", err)
	} else if ok {
		return out
	}

	start := time.Now()
	segs := r.Parse(text)
	out := cache.Rendered{
		HTML:  render.RenderString(segs, opts),
		Plain: formula.ToPlainText(segs),
	}
	r.record(OpRender, start)

	if err := r.cache.Put(r.symbols.Digest(), text, opts, out); err != nil {
		r.log.Warn("render cache write failed", "error", err)
	}
	return out
}

func (r *Renderer) record(op string, start time.Time) {
	if r.stats != nil {
		r.stats.Since(op, start)
	}
}
