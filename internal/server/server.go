// Package server exposes the replay host over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/UnknownOlympus/shooter/internal/layer"
	"github.com/UnknownOlympus/shooter/internal/replay"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxScriptBytes = 1 << 20

// Pinger reports whether a backing database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves health, metrics, session replays and layer exports.
type Server struct {
	log    *slog.Logger
	runner *replay.Runner
	store  *layer.Store
	reg    *prometheus.Registry
	db     Pinger

	// mu serializes replays: a tool session handles one event at a time.
	mu sync.Mutex
}

// New creates a server. db may be nil when running without a database.
func New(log *slog.Logger, runner *replay.Runner, store *layer.Store, reg *prometheus.Registry, db Pinger) *Server {
	return &Server{log: log, runner: runner, store: store, reg: reg, db: db}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/sessions", s.postSession).Methods(http.MethodPost)
	router.HandleFunc("/layers/{name}.geojson", s.getLayer).Methods(http.MethodGet)

	return router
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	const (
		readTimeout     = 5 * time.Second
		writeTimeout    = 30 * time.Second
		shutdownTimeout = 10 * time.Second
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.log.InfoContext(ctx, "HTTP server stopped")

	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

func (s *Server) postSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxScriptBytes))
	if err != nil {
		s.writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("failed to read script: %w", err))
		return
	}

	script, err := replay.Parse(data)
	if err != nil {
		s.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	report, err := s.runner.Run(ctx, script, s.store)
	s.mu.Unlock()
	if err != nil {
		s.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, report)
}

func (s *Server) getLayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	data, err := s.store.GeoJSON(name)
	if errors.Is(err, layer.ErrUnknownLayer) {
		s.writeError(ctx, w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if _, err = w.Write(data); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(ctx, "Request failed", "status", status, "error", err)
	}
	s.writeJSON(ctx, w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}
