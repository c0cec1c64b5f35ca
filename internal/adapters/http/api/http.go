// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/onthisday/internal/domain/model"
)

// DefaultMaxCount caps GET /history?count when no other limit is given.
const DefaultMaxCount = 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Best returns one of the most interesting events for the date.
	Best(ctx context.Context, month, day int) (model.Event, error)

	// Top returns up to count events for the date in descending interest order.
	Top(ctx context.Context, month, day, count int) ([]model.Event, error)

	// Now is the clock that supplies the default date.
	Now() time.Time
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	historyHandler *HistoryHandler
}

// NewServer creates a new API server with all handlers. A maxCount below one
// uses DefaultMaxCount.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxCount int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		historyHandler: NewHistoryHandler(deps, maxCount),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/history/best", MetricsMiddleware(s.historyHandler.HandleBest, "history_best"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleTop, "history"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
