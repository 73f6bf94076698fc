package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fennwick/keepsake/internal/engine"
)

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Role == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "role and content required")
		return
	}

	id, err := s.db.AddMessage(sessionID, req.Role, req.Content, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Turns          []engine.Turn `json:"turns"`
		AffectionDelta float64       `json:"affection_delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res := s.engine.ProcessMessages(sessionID, req.Turns, req.AffectionDelta)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	count, err := s.engine.SegmentSession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"segments": count})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, s.engine.RetrieveMemory(sessionID))
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bundle := s.engine.RetrieveMemory(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{
		"context": engine.FormatMemory(bundle),
	})
}

func (s *Server) handleReinforce(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := s.engine.Reinforce(req.ID, req.Type); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reinforced"})
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	writeJSON(w, http.StatusOK, s.engine.RunDecay(sessionID))
}

func (s *Server) handleMigrateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	res, err := s.engine.MigrateSession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMigrateAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.MigrateAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
