package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"IDXForecast/internal/model"
)

// Forecaster runs the prediction pipeline for one symbol.
type Forecaster interface {
	Predict(ctx context.Context, symbol string) (*model.PredictionResult, error)
}

// HistoryReporter reconciles the ledger of one symbol.
type HistoryReporter interface {
	History(ctx context.Context, symbol string) (*model.HistoryReport, error)
}

// Config holds server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsPath     string
}

// Server exposes the forecaster over HTTP.
type Server struct {
	echo    *echo.Echo
	config  Config
	engine  Forecaster
	history HistoryReporter
	stocks  []model.Stock
}

// New builds the echo instance and registers all routes. A nil gatherer
// disables the metrics endpoint.
func New(cfg Config, engine Forecaster, hist HistoryReporter, stocks []model.Stock, gatherer prometheus.Gatherer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(Recover())
	e.Use(RequestLogging())

	s := &Server{echo: e, config: cfg, engine: engine, history: hist, stocks: stocks}

	e.GET("/healthz", s.health)
	g := e.Group("/api")
	g.GET("/stocks", s.listStocks)
	g.POST("/predict", s.predict)
	g.GET("/history/:symbol", s.getHistory)

	if gatherer != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.config.Addr).Msg("http server listening")
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}
