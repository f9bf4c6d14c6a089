// Package httpserver exposes the connector's public getters over HTTP
// alongside the health, readiness, and metrics endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landigf/MinervaS/internal/connector"
	"github.com/landigf/MinervaS/internal/domain"
)

// Advisor is the connector surface the API serves. Consumers only ever see
// these getters; the cache layout is not part of the contract.
type Advisor interface {
	CheckReadiness(ctx context.Context) error
	Events(ctx context.Context, f connector.Filter) ([]domain.Event, error)
	EventsSummary(ctx context.Context, f connector.Filter) (map[string]int, error)
	GenerateAlerts(ctx context.Context, f connector.Filter) ([]domain.Alert, error)
	AttentionScore(ctx context.Context, f connector.Filter) (float64, error)
	SpeedFactor(ctx context.Context, req connector.SpeedRequest) (float64, error)
}

// defaultAlertRadiusKm bounds alert queries when the client does not pass
// within_km, matching the advisory default.
const defaultAlertRadiusKm = 5.0

// Server wraps the HTTP listener.
type Server struct {
	httpServer *http.Server
	advisor    Advisor
	logger     *slog.Logger
}

// NewServer creates the HTTP API.
func NewServer(addr string, advisor Advisor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		advisor: advisor,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /events/summary", s.handleSummary)
	mux.HandleFunc("GET /alerts", s.handleAlerts)
	mux.HandleFunc("GET /attention", s.handleAttention)
	mux.HandleFunc("GET /speed", s.handleSpeed)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.advisor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.advisor.Events(r.Context(), filterFromQuery(r, 0))
	if err != nil {
		s.fail(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.advisor.EventsSummary(r.Context(), filterFromQuery(r, 0))
	if err != nil {
		s.fail(w, "summarize events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.advisor.GenerateAlerts(r.Context(), filterFromQuery(r, defaultAlertRadiusKm))
	if err != nil {
		s.fail(w, "generate alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleAttention(w http.ResponseWriter, r *http.Request) {
	score, err := s.advisor.AttentionScore(r.Context(), filterFromQuery(r, defaultAlertRadiusKm))
	if err != nil {
		s.fail(w, "compute attention score", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"attention_score": score})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	req := connector.SpeedRequest{
		Filter:           filterFromQuery(r, defaultAlertRadiusKm),
		Fatigue:          queryFloat(r, "fatigue", 0),
		DeadlinePressure: queryFloat(r, "deadline", 0),
	}
	factor, err := s.advisor.SpeedFactor(r.Context(), req)
	if err != nil {
		s.fail(w, "compute speed factor", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"speed_factor": factor})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

// filterFromQuery reads hours and within_km query parameters.
func filterFromQuery(r *http.Request, defaultWithinKm float64) connector.Filter {
	f := connector.Filter{WithinKm: queryFloat(r, "within_km", defaultWithinKm)}
	if hours := queryFloat(r, "hours", 0); hours > 0 {
		f.Window = time.Duration(hours * float64(time.Hour))
	}
	return f
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
