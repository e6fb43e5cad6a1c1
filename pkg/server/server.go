// Package server exposes TOPSIS ranking over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/report"
	"github.com/toyinlola/topsis/pkg/table"
	"github.com/toyinlola/topsis/pkg/topsis"
)

const (
	defaultMaxUploadBytes  = 10 << 20
	defaultReadTimeout     = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	maxHeaderBytes         = 1 << 20
)

// Config holds the HTTP adapter settings.
type Config struct {
	Address         string
	OutputDir       string
	MaxUploadBytes  int64
	RateLimit       float64 // requests per second; <= 0 disables limiting
	RateBurst       int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	Retention       time.Duration
	CORSOrigins     []string
}

// Option configures a Server.
type Option func(*Server)

// WithMailer enables result delivery by email.
func WithMailer(m interfaces.Mailer) Option {
	return func(s *Server) {
		s.mailer = m
	}
}

// WithTracer overrides the OpenTelemetry tracer used for ranking spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// Server is the HTTP adapter around the score calculator.
type Server struct {
	cfg     Config
	parser  interfaces.TableParser
	calc    *topsis.Calculator
	gen     *report.Generator
	store   *Store
	mailer  interfaces.Mailer
	limiter *rate.Limiter
	metrics *metrics
	tracer  trace.Tracer
}

// New creates a Server and its output directory.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "outputs"
	}

	store, err := NewStore(cfg.OutputDir, cfg.Retention)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		cfg:     cfg,
		parser:  table.NewParser(),
		calc:    topsis.NewCalculator(),
		gen:     report.NewGenerator(),
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
		metrics: newMetrics(),
		tracer:  otel.Tracer("topsis-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.storedFiles.Set(float64(store.Count()))
	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	m := s.metrics
	api := func(route string, h http.HandlerFunc) http.Handler {
		return m.instrument(route, rateLimit(s.limiter, m, h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", m.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("POST /api/topsis", api("rank", s.handleRank))
	mux.Handle("GET /api/download/{name}", api("download", s.handleDownload))
	mux.Handle("GET /metrics", m.handler())

	return recoverPanics(cors(s.cfg.CORSOrigins, mux))
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      2 * s.cfg.ReadTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "address", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
