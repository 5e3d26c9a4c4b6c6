package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/config"
	"github.com/hookcatch/hookcatch/pkg/logging"
	"github.com/hookcatch/hookcatch/pkg/metrics"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// Server ties the token registry, the capture service and the HTTP surface
// together.
type Server struct {
	cfg      *config.Config
	registry *token.Registry
	captures *capture.Service
	metrics  *metrics.Metrics

	httpServer *http.Server
	startTime  time.Time
	version    string
	log        *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithMetrics sets the metrics instance. Without it a fresh one is created.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewServer creates the HTTP server around the given registry and capture
// service.
func NewServer(cfg *config.Config, registry *token.Registry, captures *capture.Service, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		captures: captures,
		metrics:  metrics.New(),
		version:  "dev",
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "api")

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// Handler builds the full middleware-wrapped handler. Exposed so tests can
// drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var h http.Handler = mux
	h = s.corsMiddleware(h)
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	return h
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.startTime = time.Now()
	s.log.Info("starting server", "addr", s.httpServer.Addr, "version", s.version)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	return int(time.Since(s.startTime).Seconds())
}

// storeContext derives a context bounding the store-facing work of one
// request.
func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.StoreTimeout) * time.Second
	if timeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), timeout)
}
