package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/internal/simulator"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *StatusStore
	registry *prometheus.Registry
}

// NewRegistry returns a registry holding the simulator and search collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(simulator.Collectors()...)
	reg.MustRegister(search.Collectors()...)
	return reg
}

func NewHTTPServer(store *StatusStore, registry *prometheus.Registry) *HTTPServer {
	if registry == nil {
		registry = NewRegistry()
	}
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		registry: registry,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("/v1/status", s.handleStatusList)
	s.mux.HandleFunc("/v1/status/", s.handleStatusByID)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"searching": s.store.Active(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleStatusList handles /v1/status
func (s *HTTPServer) handleStatusList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.store.List(limit)})
}

// handleStatusByID handles /v1/status/{run_id}
func (s *HTTPServer) handleStatusByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	runID := strings.TrimPrefix(r.URL.Path, "/v1/status/")
	if runID == "" || strings.Contains(runID, "/") {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}
	st, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]any{"error": msg})
}
