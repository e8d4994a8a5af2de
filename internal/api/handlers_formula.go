package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/studyhub/internal/formula"
	"github.com/dgallion1/studyhub/internal/markdown"
	"github.com/dgallion1/studyhub/internal/render"
)

type formulaRequest struct {
	Formula string `json:"formula"`
	Size    string `json:"size,omitempty"`
	Color   string `json:"color,omitempty"`
}

type renderResponse struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
	Empty bool   `json:"empty"`
}

// decodeFormula reads a formulaRequest and resolves its render options. It
// writes the error response itself and returns false on failure.
func (s *Server) decodeFormula(w http.ResponseWriter, r *http.Request) (formulaRequest, render.Options, bool) {
	var req formulaRequest
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxFormulaBytes)+4096)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return req, render.Options{}, false
	}
	if len(req.Formula) > s.cfg.MaxFormulaBytes {
		jsonError(w, fmt.Sprintf("formula exceeds max size (%d bytes)", s.cfg.MaxFormulaBytes), http.StatusRequestEntityTooLarge)
		return req, render.Options{}, false
	}
	opts, err := s.renderOptions(req.Size, req.Color)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return req, render.Options{}, false
	}
	return req, opts, true
}

// renderOptions resolves a requested size and color. An empty size means the
// configured default.
func (s *Server) renderOptions(size, color string) (render.Options, error) {
	opts := render.Options{Size: s.cfg.DefaultSize, Color: color}
	if size != "" {
		sz, err := render.ParseSize(size)
		if err != nil {
			return opts, err
		}
		opts.Size = sz
	}
	if opts.Size == "" {
		opts.Size = render.Medium
	}
	return opts, nil
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeFormula(w, r)
	if !ok {
		return
	}
	segs := s.renderer.Parse(req.Formula)
	writeJSON(w, http.StatusOK, map[string]any{
		"segments": formula.Tree(segs),
		"plain":    formula.ToPlainText(segs),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := s.decodeFormula(w, r)
	if !ok {
		return
	}
	out := s.renderer.Render(req.Formula, opts)
	writeJSON(w, http.StatusOK, renderResponse{
		HTML:  out.HTML,
		Plain: out.Plain,
		Empty: out.HTML == "",
	})
}

func (s *Server) handlePlain(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeFormula(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"plain": formula.ToPlainText(s.renderer.Parse(req.Formula)),
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols": s.renderer.Symbols().Map(),
	})
}

// handleMarkdown renders a Markdown body with formula blocks and inline
// formulas. Size and color come from the query string.
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r.URL.Query().Get("size"), r.URL.Query().Get("color"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	src, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(src)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	ext := &markdown.Extension{Symbols: s.renderer.Symbols(), Options: opts}
	out, err := ext.Convert(src)
	if err != nil {
		jsonError(w, "convert markdown: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
