// Package server exposes chart generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/albumgrid/internal/chart"
	"github.com/jfmyers9/albumgrid/internal/history"
	"github.com/jfmyers9/albumgrid/internal/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	historyTimeout    = 2 * time.Second
)

// Generator renders a chart.
type Generator interface {
	Generate(ctx context.Context, req chart.Request) (*chart.Result, error)
}

// Recorder logs rendered charts. *history.Store satisfies it.
type Recorder interface {
	Add(ctx context.Context, e history.Entry) (string, error)
}

// Config configures a Server.
type Config struct {
	Addr string

	// User is the Last.fm account every chart is drawn for.
	User string

	// Expiration is the Cache-Control max-age sent with charts.
	Expiration time.Duration
}

// Server serves charts for a single Last.fm user.
type Server struct {
	cfg       Config
	generator Generator
	recorder  Recorder
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	handler   http.Handler
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithRecorder logs every rendered chart to r.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithMetrics records request and chart metrics in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a server. Without WithMetrics, /metrics serves the default
// Prometheus registry.
func New(cfg Config, generator Generator, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		generator: generator,
		gatherer:  prometheus.DefaultGatherer,
		logger:    logger.With().Str("component", "server").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/{period}/{shape}", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.handler = s.logRequests(mux)
	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on cfg.Addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Starting HTTP server")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello world!"))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	period, err := chart.ParsePeriod(r.PathValue("period"))
	if err != nil {
		s.metrics.ChartRendered("client_error", 0)
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	shape, err := chart.ParseShape(r.PathValue("shape"))
	if err != nil {
		s.metrics.ChartRendered("client_error", 0)
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	req := chart.Request{User: s.cfg.User, Period: period, Shape: shape}
	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		status, label := statusFor(err)
		s.metrics.ChartRendered(label, 0)

		if r.Context().Err() != nil {
			logger.Debug().Err(err).Msg("Client went away before chart was ready")
			return
		}

		logger.Error().Err(err).
			Stringer("period", period).
			Stringer("shape", shape).
			Msg("Failed to generate chart")

		msg := http.StatusText(status)
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		writeText(w, status, msg)
		return
	}

	s.metrics.ChartRendered("success", result.Duration)
	s.record(r.Context(), req, result)

	h := w.Header()
	h.Set("Content-Type", "image/jpeg")
	h.Set("Content-Length", strconv.Itoa(len(result.JPEG)))
	h.Set("Age", "0")
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, must-revalidate", int64(s.cfg.Expiration/time.Second)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.JPEG)
}

// record logs a chart to the history store. Failures are logged and
// otherwise ignored; the chart is still served.
func (s *Server) record(ctx context.Context, req chart.Request, result *chart.Result) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	_, err := s.recorder.Add(ctx, history.Entry{
		User:         req.User,
		Period:       req.Period.String(),
		Shape:        req.Shape.String(),
		Albums:       result.Albums,
		Placeholders: result.Placeholders,
		Bytes:        len(result.JPEG),
		Duration:     result.Duration,
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to record chart history")
	}
}

// statusFor maps a generation error to an HTTP status and a metrics label.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, chart.ErrInvalidShape), errors.Is(err, chart.ErrInvalidPeriod):
		return http.StatusBadRequest, "client_error"
	case errors.Is(err, chart.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
