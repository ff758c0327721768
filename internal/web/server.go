// Package web provides the optional HTTP status server for a migration
// run: a health probe backed by a store ping and a live snapshot of the
// run's batch progress. It exists for operators watching a long-running
// load; the pipeline itself never depends on it.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/carelake/patientload/internal/config"
	"github.com/carelake/patientload/internal/engine"
	"github.com/carelake/patientload/internal/web/middleware"
)

// Pinger reports whether the destination store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves run status over HTTP while a migration is in flight.
type Server struct {
	cfg     config.StatusConfig
	router  *chi.Mux
	server  *http.Server
	tracker *engine.Tracker
	pinger  Pinger
}

// NewServer creates a status server reading progress from tracker and
// probing the store through pinger.
func NewServer(cfg config.StatusConfig, tracker *engine.Tracker, pinger Pinger) *Server {
	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		tracker: tracker,
		pinger:  pinger,
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/run", s.handleRun)

	return s
}

// handleHealth pings the store with a short bound and reports readiness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRun returns the live progress snapshot of the current run.
func (s *Server) handleRun(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

// Start begins listening for HTTP requests. Blocks until Shutdown or a
// listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.cfg.Addr(),
		Handler:     s.router,
		ReadTimeout: s.cfg.ReadTimeout,
		IdleTimeout: 60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode", "error", err)
	}
}
