// Package http serves the constellation view over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/constellation/internal/constellation"
	"github.com/fyrsmithlabs/constellation/internal/logging"
	"github.com/fyrsmithlabs/constellation/internal/notify"
)

// ViewBuilder produces the current aggregated view.
type ViewBuilder interface {
	Build(ctx context.Context) *constellation.View
}

// Config holds HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	ServiceName string

	// Subject is the NATS subject carrying view snapshots.
	Subject string

	// Heartbeat is the idle interval between SSE comments.
	Heartbeat time.Duration

	// RequestsPerMinute is the per-client limit. Zero disables limiting.
	RequestsPerMinute int
	Burst             int

	// MeterProvider receives HTTP metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

func defaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              3333,
		ServiceName:       "constellation",
		Subject:           notify.DefaultSubject,
		Heartbeat:         30 * time.Second,
		RequestsPerMinute: 60,
		Burst:             20,
	}
}

// Server provides the constellation HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	views   ViewBuilder
	nc      *nats.Conn
	logger  *logging.Logger
	config  *Config
	metrics *HTTPMetrics
	now     func() time.Time
}

// NewServer creates a new HTTP server. nc may be nil, in which case the
// stream endpoint reports 503.
func NewServer(views ViewBuilder, nc *nats.Conn, logger *logging.Logger, cfg *Config) (*Server, error) {
	if views == nil {
		return nil, errors.New("view builder cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = defaultConfig()
	}
	if cfg.Subject == "" {
		cfg.Subject = notify.DefaultSubject
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 30 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "constellation"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		views:   views,
		nc:      nc,
		logger:  logger,
		config:  cfg,
		metrics: NewHTTPMetrics(cfg.MeterProvider, logger.Underlying()),
		now:     time.Now,
	}

	e.Use(middleware.RequestID())
	e.Use(s.metrics.MetricsMiddleware())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.RequestsPerMinute > 0 {
		e.Use(rateLimiter(cfg.RequestsPerMinute, cfg.Burst))
	}

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/constellation", s.handlePage)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/constellation", s.handleView)
	v1.GET("/constellation/layout", s.handleLayout)
	v1.GET("/constellation/stream", s.handleStream)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// LayoutResponse is the response body for GET /api/v1/constellation/layout.
type LayoutResponse struct {
	Layout      []constellation.LayoutNode `json:"layout"`
	GeneratedAt time.Time                  `json:"generatedAt"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: s.config.ServiceName})
}

func (s *Server) handleView(c echo.Context) error {
	return c.JSON(http.StatusOK, s.views.Build(c.Request().Context()))
}

func (s *Server) handleLayout(c echo.Context) error {
	v := s.views.Build(c.Request().Context())
	return c.JSON(http.StatusOK, LayoutResponse{Layout: v.Layout, GeneratedAt: v.GeneratedAt})
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
