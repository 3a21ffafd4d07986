package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	scanService    driving.ScanService
	findingService driving.FindingService
	authService    driving.AuthService

	// Infrastructure
	taskQueue driven.TaskQueue // optional, events are processed inline without it
	store     Pinger           // finding store health check
	worker    Pinger           // in-process worker, set in all mode
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
	Logger  *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Deps holds the collaborators the server routes to
type Deps struct {
	ScanService    driving.ScanService
	FindingService driving.FindingService
	AuthService    driving.AuthService
	TaskQueue      driven.TaskQueue // can be nil
	Store          Pinger
	Worker         Pinger // can be nil
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Deps) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		scanService:    deps.ScanService,
		findingService: deps.FindingService,
		authService:    deps.AuthService,
		taskQueue:      deps.TaskQueue,
		store:          deps.Store,
		worker:         deps.Worker,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// API documentation (no auth)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Auth endpoints (no auth)
	s.router.HandleFunc("POST /api/v1/auth/token", s.handleIssueToken)

	// Event intake (authenticated)
	s.router.Handle("POST /api/v1/events",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSubmitEvent)))

	// Findings (authenticated)
	s.router.Handle("GET /api/v1/findings/{key...}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetFinding)))

	// Queue stats (authenticated)
	s.router.Handle("GET /api/v1/queue/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleQueueStats)))
}

// Handler returns the router wrapped in the request middleware chain
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = NewLoggingMiddleware(s.logger).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	h = NewRequestIDMiddleware().Handler(h)
	return h
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
