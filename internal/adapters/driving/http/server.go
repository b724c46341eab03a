package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rajeev-sr/hackrx/internal/core/ports/driving"
	"github.com/rajeev-sr/hackrx/internal/metrics"
)

// Pinger is implemented by backing services the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Server is the HTTP driving adapter. It translates the REST surface into
// calls on the job service and owns nothing beyond request handling.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	jobService driving.JobService
	checks     map[string]Pinger
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewServer creates a new HTTP server. checks maps a component name to its
// readiness probe; nil entries are skipped. metrics may be nil.
func NewServer(cfg Config, jobService driving.JobService, checks map[string]Pinger, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:     http.NewServeMux(),
		version:    cfg.Version,
		jobService: jobService,
		checks:     checks,
		metrics:    m,
		logger:     logger,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.withMiddleware(s.router),
		// Synchronous jobs download, index and answer within the request,
		// so the write timeout is much longer than usual.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	// Health endpoints (no versioning)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics.Handler())
	}

	// Job endpoints
	s.router.HandleFunc("POST /api/v1/jobs", s.handleRunJob)
	s.router.HandleFunc("POST /api/v1/jobs/async", s.handleSubmitJob)
	s.router.HandleFunc("GET /api/v1/jobs/{id}", s.handleJobStatus)

	// Interactive query endpoint
	s.router.HandleFunc("POST /api/v1/query", s.handleQuery)
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the middleware-wrapped root handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr, "version", s.version)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
