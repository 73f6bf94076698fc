package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fennwick/keepsake/internal/engine"
	"github.com/fennwick/keepsake/internal/store"
)

// Server is the keepsake HTTP API server. It owns no memory semantics; every
// handler delegates to the engine.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database, engine, and version
// string.
func New(db *store.DB, eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/sessions/{sessionID}/messages", s.handleAddMessage)
		r.Post("/sessions/{sessionID}/process", s.handleProcess)
		r.Post("/sessions/{sessionID}/segment", s.handleSegment)
		r.Post("/sessions/{sessionID}/migrate", s.handleMigrateSession)

		r.Get("/memory/{sessionID}", s.handleRetrieve)
		r.Get("/memory/{sessionID}/context", s.handleContext)
		r.Post("/memories/reinforce", s.handleReinforce)

		r.Post("/decay", s.handleDecay)
		r.Post("/migrate", s.handleMigrateAll)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
