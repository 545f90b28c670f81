// internal/server/server.go
// Package server exposes the advisory engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/contextstore"
	"housing-advisor/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 * 1024

// ChatService processes one advisory turn.
type ChatService interface {
	Handle(ctx context.Context, sessionID, query string, weights map[string]float64) (*models.ConsolidatedResponse, error)
}

// Server wires the chat service and the context store onto an HTTP router.
type Server struct {
	chat   ChatService
	store  contextstore.Store
	logger logger.Logger
	router chi.Router
}

func New(chat ChatService, store contextstore.Store, log logger.Logger) *Server {
	s := &Server{
		chat:   chat,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
	})

	s.router = r
	return s
}

// Router returns the configured HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

type chatRequest struct {
	SessionID string             `json:"sessionId"`
	Query     string             `json:"query"`
	Weights   map[string]float64 `json:"weights,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read request body", "")
		return
	}

	if err := validateChatRequest(body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body", "")
		return
	}

	resp, err := s.chat.Handle(r.Context(), req.SessionID, req.Query, req.Weights)
	if err != nil {
		s.writeChatError(w, req.SessionID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	uc, err := s.store.Get(r.Context(), sessionID)
	if err == contextstore.ErrNotFound {
		s.writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	if err != nil {
		s.writeChatError(w, sessionID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, uc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeChatError maps the internal error taxonomy onto HTTP statuses.
func (s *Server) writeChatError(w http.ResponseWriter, sessionID string, err error) {
	code := errors.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case code == errors.ErrCodeSessionClosed:
		status = http.StatusConflict
	case errors.IsPlanError(err):
		status = http.StatusUnprocessableEntity
	case errors.IsContextError(err):
		status = http.StatusServiceUnavailable
	}

	s.logger.Error("request failed", map[string]interface{}{
		"session_id": sessionID,
		"code":       string(code),
		"status":     status,
		"error":      err.Error(),
	})
	s.writeError(w, status, err.Error(), string(code))
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg, code string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}
