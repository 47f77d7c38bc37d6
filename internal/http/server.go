// Package http exposes the JSON API: auth, expenses, income, month
// summaries and AI insights.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/insight"
	"fintrack/internal/storage"
)

const (
	insightCacheSize = 256
	insightCacheTTL  = 10 * time.Minute
)

// EventPublisher pushes month-change events to the export pipeline.
// Publishing is best effort: a nil publisher or a publish failure never
// fails the request that triggered it.
type EventPublisher interface {
	PublishMonthEvent(ctx context.Context, event *amqp.MonthEvent) error
}

type Server struct {
	http.Server

	repo     *storage.Repository
	tokens   *auth.Tokens
	insight  *insight.Client
	events   EventPublisher
	insights *cache.Store[string]
}

// NewServer configures routes and returns a ready-to-run http.Server.
// events may be nil when no broker is configured.
func NewServer(addr string, repo *storage.Repository, tokens *auth.Tokens, insightClient *insight.Client, events EventPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		repo:     repo,
		tokens:   tokens,
		insight:  insightClient,
		events:   events,
		insights: cache.New[string](insightCacheSize, insightCacheTTL),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /auth/register", s.withRequest(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withRequest(s.handleLogin))

	mux.HandleFunc("POST /expenses", s.withRequest(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("GET /expenses", s.withRequest(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("PUT /expenses/{id}", s.withRequest(s.requireAuth(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /expenses/{id}", s.withRequest(s.requireAuth(s.handleDeleteExpense)))

	mux.HandleFunc("POST /income", s.withRequest(s.requireAuth(s.handleSetIncome)))
	mux.HandleFunc("GET /income", s.withRequest(s.requireAuth(s.handleGetIncome)))
	mux.HandleFunc("PUT /income/{id}", s.withRequest(s.requireAuth(s.handleUpdateIncome)))
	mux.HandleFunc("DELETE /income/{id}", s.withRequest(s.requireAuth(s.handleDeleteIncome)))

	mux.HandleFunc("GET /summary", s.withRequest(s.requireAuth(s.handleMonthSummary)))

	mux.HandleFunc("GET /ai/analyze", s.withRequest(s.requireAuth(s.handleAnalyze)))

	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func insightKey(userID, month string) string {
	return userID + "|" + month
}

// publishMonthEvent records that a user's month changed: it drops the
// cached insight for that month and notifies the export pipeline.
// Publish failures are logged and swallowed.
func (s *Server) publishMonthEvent(ctx context.Context, entity, action, userID, month string) {
	s.insights.Delete(insightKey(userID, month))

	if s.events == nil {
		return
	}
	event := amqp.NewMonthEvent(entity, action, userID, month)
	if err := s.events.PublishMonthEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish month event",
			"error", err,
			"entity", entity,
			"action", action,
			"month", month)
	}
}
