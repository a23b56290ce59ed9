// Package server implements the HTTP API for the people service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanhoff/apostrophe-people/internal/auth"
	"github.com/alanhoff/apostrophe-people/internal/people"
	"github.com/alanhoff/apostrophe-people/internal/ratelimit"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

// Pinger reports backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the people HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	PeopleSvc *people.Service
	JWTMgr    *auth.JWTManager
	Logger    *slog.Logger

	// Pinger backs the health endpoint. Nil-safe: without one, health
	// reports only process liveness.
	Pinger Pinger

	// Limiter throttles mutation endpoints by client IP. Nil disables
	// rate limiting.
	Limiter ratelimit.Limiter

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := &Handlers{
		people:       cfg.PeopleSvc,
		pinger:       cfg.Pinger,
		logger:       cfg.Logger,
		version:      cfg.Version,
		maxBodyBytes: cfg.MaxRequestBodyBytes,
	}

	mux := http.NewServeMux()

	// Person directory. Open to anonymous callers; the permission layer
	// decides per action what each identity may see or do.
	mux.HandleFunc("GET /v1/people", h.HandleListPeople)
	mux.HandleFunc("GET /v1/people/{slug}", h.HandleGetPerson)
	mux.HandleFunc("GET /v1/people/autocomplete", h.HandleAutocomplete)

	// Mutations and negotiation, rate limited by client IP.
	limited := rateLimitMiddleware(cfg.Limiter)
	mux.Handle("POST /v1/people", limited(http.HandlerFunc(h.HandleSavePerson)))
	mux.Handle("POST /v1/people/username-unique", limited(http.HandlerFunc(h.HandleUsernameUnique)))
	mux.Handle("POST /v1/people/generate-password", limited(http.HandlerFunc(h.HandleGeneratePassword)))

	// Health (no auth).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → identity →
	// best-page cache → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = bestPagesMiddleware(handler)
	handler = identityMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

var _ Pinger = (*storage.DB)(nil)
