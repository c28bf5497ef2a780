// Package server exposes the correction engine over HTTP so shell glue can
// skip process start-up.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/engine"
	"github.com/vietddude/fixer/internal/rule"
)

// recordTimeout bounds how long a diagnostics write may take after answering.
const recordTimeout = 250 * time.Millisecond

// Recorder persists evaluation traces.
type Recorder interface {
	Record(ctx context.Context, d domain.Diagnostic) error
}

// Config holds the daemon dependencies.
type Config struct {
	Port     int
	Engine   *engine.Engine
	Registry *rule.Registry
	Options  engine.Options
	Recorder Recorder // optional
	Pinger   Pinger   // optional
	Logger   *slog.Logger
}

// Server provides the correction and monitoring endpoints.
type Server struct {
	cfg     Config
	log     *slog.Logger
	server  *http.Server
	pending sync.WaitGroup
}

// NewServer creates a new daemon.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg: cfg,
		log: log.With("component", "server"),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("POST /correct", s.handleCorrect)
	mux.HandleFunc("GET /rules", s.handleRules)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Daemon listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server and waits for pending diagnostics writes.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.pending.Wait()
	return err
}

// CorrectRequest is the body of POST /correct.
type CorrectRequest struct {
	domain.Invocation
	MaxResults int `json:"max_results,omitempty"`
}

// CorrectResponse is the answer of POST /correct.
type CorrectResponse struct {
	RequestID        string              `json:"request_id"`
	Found            bool                `json:"found"`
	Corrections      []domain.Correction `json:"corrections"`
	Elapsed          string              `json:"elapsed"`
	DeadlineExceeded bool                `json:"deadline_exceeded"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}

	fc, err := domain.NewFailureContext(req.Invocation)
	if err != nil {
		resp := errorResponse{Error: err.Error()}
		var coded *domain.CodedError
		if errors.As(err, &coded) {
			resp.Code = coded.Code
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	opts := s.cfg.Options
	if req.MaxResults > 0 {
		opts.MaxResults = req.MaxResults
	}
	res := s.cfg.Engine.Correct(r.Context(), fc, opts)

	writeJSON(w, http.StatusOK, CorrectResponse{
		RequestID:        res.RequestID,
		Found:            res.Found(),
		Corrections:      res.Corrections,
		Elapsed:          res.Elapsed.String(),
		DeadlineExceeded: res.DeadlineExceeded,
	})

	if s.cfg.Recorder != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := s.cfg.Recorder.Record(ctx, res.Diagnostic(fc, time.Now())); err != nil {
				s.log.Warn("Failed to record diagnostic", "request_id", res.RequestID, "error", err)
			}
		}()
	}
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Registry.Describe())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.checkHealth(r.Context())

	status := http.StatusOK
	if report.SystemStatus == StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.checkHealth(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
