package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/studyhub/internal/config"
	"github.com/dgallion1/studyhub/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for studyhub.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	renderer     *pipeline.Renderer
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		renderer:     orch.Renderer(),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.StudyhubAPIKey, s.log))

		r.Post("/api/formula/parse", s.handleParse)
		r.Post("/api/formula/render", s.handleRender)
		r.Post("/api/formula/plain", s.handlePlain)
		r.Get("/api/symbols", s.handleSymbols)
		r.Post("/api/markdown", s.handleMarkdown)

		r.Post("/api/sheets", s.handleSheetUpload)
		r.Post("/api/sheets/batch", s.handleBatchUpload)
		r.Get("/api/sheets/{jobID}/status", s.handleSheetStatus)
		r.Get("/api/sheets/{jobID}/result", s.handleSheetResult)
		r.Get("/api/sheets/{jobID}/handout", s.handleSheetHandout)

		r.Get("/api/topics/{topicID}", s.handleListTopic)
		r.Delete("/api/topics/{topicID}", s.handleDeleteTopic)
		r.Get("/api/topics/{topicID}/formulas/{formulaID}", s.handleGetFormula)
		r.Delete("/api/topics/{topicID}/formulas/{formulaID}", s.handleDeleteFormula)

		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
