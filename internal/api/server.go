package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docbind/internal/config"
	"github.com/dgallion1/docbind/internal/fetch"
	"github.com/dgallion1/docbind/internal/pipeline"
	"github.com/dgallion1/docbind/internal/storage"
)

// Server is the HTTP API server for docbind.
type Server struct {
	router chi.Router
	merger *pipeline.Merger
	files  *storage.Local
	stats  *fetch.Stats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(merger *pipeline.Merger, files *storage.Local, stats *fetch.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		merger: merger,
		files:  files,
		stats:  stats,
		log:    log,
		cfg:    cfg,
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

	r.Get("/health", s.handleHealth)

	r.Post("/merge", s.handleMerge)
	r.Post("/preview", s.handlePreview)

	r.Get("/api/runs/{runID}", s.handleRunStatus)
	r.Get("/api/stats/fetch", s.handleFetchStats)

	r.Get("/files/{name}", s.handleFile)
	if p := s.files.Prefix(); p != "" && p != "files" {
		r.Get("/"+p+"/{name}", s.handleFile)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
