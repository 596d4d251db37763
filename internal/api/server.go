// Package api exposes the operational HTTP surface: health, metrics, and
// read-only views of the ledger and the latest run.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
	"github.com/slotscout/slotscout/internal/collector"
)

// Ledger is the read side of the record store the API serves.
type Ledger interface {
	LoadAll() ([]centre.Centre, error)
	Path() string
}

// RunStatus holds the most recent run result for the status endpoint.
// Safe for concurrent use.
type RunStatus struct {
	mu     sync.RWMutex
	result collector.Result
	ranAt  time.Time
	set    bool
}

// Record stores a completed run's result.
func (s *RunStatus) Record(res collector.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.ranAt = time.Now().UTC()
	s.set = true
}

// Latest returns the last recorded result, if any.
func (s *RunStatus) Latest() (collector.Result, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.ranAt, s.set
}

// Server wires HTTP handlers to the ledger and run status.
type Server struct {
	router chi.Router
	ledger Ledger
	status *RunStatus
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(ledger Ledger, status *RunStatus, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{ledger: ledger, status: status, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/centres", s.listCentres)
		r.Get("/status", s.runStatus)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCentres(w http.ResponseWriter, _ *http.Request) {
	centres, err := s.ledger.LoadAll()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read ledger")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ledger":  s.ledger.Path(),
		"count":   len(centres),
		"centres": centres,
	})
}

func (s *Server) runStatus(w http.ResponseWriter, _ *http.Request) {
	res, ranAt, ok := s.status.Latest()
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]any{"ran": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ran":    true,
		"ranAt":  ranAt,
		"result": res,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
