// Package web exposes the latest analysis reports over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cryptoadvisor/internal/domain"
	"cryptoadvisor/internal/storage/reports"
)

// reportReader serves stored analysis reports.
type reportReader interface {
	Latest(pair string) (domain.AnalysisReport, error)
	Pairs() []string
}

// Server exposes HTTP endpoints serving stored analysis reports.
type Server struct {
	addr   string
	store  reportReader
	logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, store reportReader, logger *zap.Logger) *Server {
	return &Server{addr: addr, store: store, logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/analysis", s.handleAnalysis)
	mux.HandleFunc("/pairs", s.handlePairs)
	mux.HandleFunc("/healthz", s.handleHealth)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "report store not available", http.StatusServiceUnavailable)
		return
	}

	pair := r.URL.Query().Get("pair")
	if pair == "" {
		http.Error(w, "missing pair query parameter", http.StatusBadRequest)
		return
	}

	report, err := s.store.Latest(pair)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			http.Error(w, "no analysis for pair "+pair, http.StatusNotFound)
			return
		}
		s.logger.Error("failed to read report", zap.String("pair", pair), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, report)
}

func (s *Server) handlePairs(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		http.Error(w, "report store not available", http.StatusServiceUnavailable)
		return
	}
	pairs := s.store.Pairs()
	if pairs == nil {
		pairs = []string{}
	}
	writeJSON(w, map[string][]string{"pairs": pairs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
