// Package server provides the HTTP API server for bigtext
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/bigtext"
	"github.com/shivavenkatesh/bigtext/internal/fault"
	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

// Version is reported by /health
const Version = "0.1.0"

// Server is the HTTP API server
type Server struct {
	svc    bigtext.Service
	config Config
	logger *slog.Logger
	server *http.Server
}

// Config configures the server
type Config struct {
	Host string
	Port int
}

// New creates a new server
func New(svc bigtext.Service, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:    svc,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the routed API with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/length", s.handleLength)
	mux.HandleFunc("/index", s.handleIndex)
	mux.HandleFunc("/replace", handleOutput(s.svc.Replace))
	mux.HandleFunc("/split", handleOutput(s.svc.Split))
	mux.HandleFunc("/join", handleOutput(s.svc.Join))
	mux.HandleFunc("/insert", handleOutput(s.svc.Insert))
	mux.HandleFunc("/case", handleOutput(s.svc.ChangeCase))
	mux.HandleFunc("/trim", handleOutput(s.svc.Trim))
	mux.HandleFunc("/substring", handleOutput(s.svc.Substring))
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunByID)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)

	return s.logRequests(corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // large files take a while to stream
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// decodePost rejects non-POST requests and decodes the JSON body into v
func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// handleOutput serves an operation that writes output files
func handleOutput[T any](run func(context.Context, T) (*types.OutputResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !decodePost(w, r, &req) {
			return
		}

		resp, err := run(r.Context(), req)
		if err != nil {
			writeError(w, err.Error(), statusFor(err))
			return
		}

		writeJSON(w, resp, http.StatusOK)
	}
}

// handleLength handles POST /length
func (s *Server) handleLength(w http.ResponseWriter, r *http.Request) {
	var req types.LengthRequest
	if !decodePost(w, r, &req) {
		return
	}

	n, err := s.svc.Length(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, types.LengthResponse{Length: n}, http.StatusOK)
}

// handleIndex handles POST /index
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req types.IndexRequest
	if !decodePost(w, r, &req) {
		return
	}

	i, err := s.svc.IndexOf(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, types.IndexResponse{Index: i}, http.StatusOK)
}

// handleRuns handles GET /runs (list) and DELETE /runs (clear)
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	op := types.Op(q.Get("op"))

	switch r.Method {
	case http.MethodGet:
		opts := store.ListOptions{
			Op:         op,
			Path:       q.Get("path"),
			Descending: q.Get("order") != "asc",
		}
		opts.Limit, _ = strconv.Atoi(q.Get("limit"))
		opts.Offset, _ = strconv.Atoi(q.Get("offset"))

		runs, err := s.svc.Runs(r.Context(), opts)
		if err != nil {
			writeError(w, err.Error(), statusFor(err))
			return
		}
		if runs == nil {
			runs = []*types.Run{}
		}
		writeJSON(w, map[string]any{"runs": runs}, http.StatusOK)

	case http.MethodDelete:
		n, err := s.svc.ClearRuns(r.Context(), op)
		if err != nil {
			writeError(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, map[string]int64{"deleted": n}, http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRunByID handles GET /runs/:id
func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" {
		writeError(w, "Run ID required", http.StatusBadRequest)
		return
	}

	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, run, http.StatusOK)
}

// handleStats handles GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": Version}, http.StatusOK)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bigtext.ErrNoJournal):
		return http.StatusServiceUnavailable
	default:
		return fault.HTTPStatus(err)
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
