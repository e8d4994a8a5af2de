package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/studyhub/internal/contentstore"
	"github.com/go-chi/chi/v5"
)

// store returns the content store client, replying 503 when publishing is
// not configured.
func (s *Server) store(w http.ResponseWriter) *contentstore.Client {
	cs := s.orchestrator.Store()
	if cs == nil {
		jsonError(w, "content store not configured", http.StatusServiceUnavailable)
	}
	return cs
}

// handleListTopic lists the published formulas of a topic.
func (s *Server) handleListTopic(w http.ResponseWriter, r *http.Request) {
	cs := s.store(w)
	if cs == nil {
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	topicID := chi.URLParam(r, "topicID")
	recs, err := cs.ListTopic(r.Context(), topicID, limit)
	if err != nil {
		jsonError(w, "failed to list topic: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topic_id": topicID,
		"formulas": recs,
	})
}

// handleDeleteTopic removes a topic and every formula under it.
func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	cs := s.store(w)
	if cs == nil {
		return
	}
	topicID := chi.URLParam(r, "topicID")
	if err := cs.DeleteTopic(r.Context(), topicID); err != nil {
		jsonError(w, "failed to delete topic: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("deleted topic", "topic_id", topicID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": contentstore.TopicKey(topicID)})
}

func (s *Server) handleGetFormula(w http.ResponseWriter, r *http.Request) {
	cs := s.store(w)
	if cs == nil {
		return
	}
	rec, err := cs.GetFormula(r.Context(), chi.URLParam(r, "topicID"), chi.URLParam(r, "formulaID"))
	if err != nil {
		jsonError(w, "failed to get formula: "+err.Error(), http.StatusBadGateway)
		return
	}
	if rec == nil {
		jsonError(w, "formula not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteFormula(w http.ResponseWriter, r *http.Request) {
	cs := s.store(w)
	if cs == nil {
		return
	}
	topicID, formulaID := chi.URLParam(r, "topicID"), chi.URLParam(r, "formulaID")
	if err := cs.DeleteFormula(r.Context(), topicID, formulaID); err != nil {
		jsonError(w, "failed to delete formula: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": contentstore.Key(topicID, formulaID)})
}
