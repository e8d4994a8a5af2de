package api

import (
	"net/http"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	st := s.renderer.Stats()
	if st == nil {
		jsonError(w, "render stats unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"operations":  st.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if c := s.renderer.Cache(); c != nil {
		hits, misses := c.Stats()
		resp["cache"] = map[string]any{
			"entries": c.Len(),
			"hits":    hits,
			"misses":  misses,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
