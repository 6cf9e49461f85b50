package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"IDXForecast/internal/calendar"
	"IDXForecast/internal/collector"
	"IDXForecast/internal/config"
	"IDXForecast/internal/history"
	"IDXForecast/internal/metrics"
	"IDXForecast/internal/predictor"
	"IDXForecast/internal/recorder"
	"IDXForecast/internal/regressor"
)

// app holds the wired pipeline shared by every subcommand.
type app struct {
	cfg       *config.Config
	calendar  *calendar.Calendar
	collector *collector.Collector
	models    *regressor.Store
	ledger    recorder.Ledger
	engine    *predictor.Engine
	history   *history.Service
	registry  *prometheus.Registry
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	cal, err := calendar.New(cfg.Market.Timezone, cfg.Market.CloseHour, cfg.Market.CloseMinute)
	if err != nil {
		return nil, fmt.Errorf("init calendar: %w", err)
	}

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, cfg.DataSource.Range, cal.Location)

	ledger, err := newLedger(cfg, cal.Location)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		calendar:  cal,
		collector: col,
		models:    regressor.NewStore(cfg.Models.Dir),
		ledger:    ledger,
	}

	stocks := cfg.StockNames()
	a.engine = &predictor.Engine{
		Collector: col,
		Models:    a.models,
		Ledger:    ledger,
		Calendar:  cal,
		Clock:     calendar.SystemClock{},
		Stocks:    stocks,
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.engine.Observer = metrics.New(a.registry)
	}
	a.history = &history.Service{Ledger: ledger, Closes: col, Stocks: stocks}
	return a, nil
}

func (a *app) Close() {
	if err := a.ledger.Close(); err != nil {
		log.Warn().Err(err).Msg("close ledger")
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case "mock":
		return &collector.MockFetcher{Price: 5000}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
}

func newLedger(cfg *config.Config, loc *time.Location) (recorder.Ledger, error) {
	switch cfg.Ledger.Backend {
	case "memory":
		return recorder.NewMemoryLedger(), nil
	case "sqlite":
		if err := ensureDir(cfg.Ledger.SQLitePath); err != nil {
			return nil, err
		}
		l, err := recorder.NewSQLiteLedger(cfg.Ledger.SQLitePath, loc)
		if err != nil {
			return nil, fmt.Errorf("init sqlite ledger: %w", err)
		}
		return l, nil
	default:
		l, err := recorder.NewCSVLedger(cfg.Ledger.CSVPath, loc)
		if err != nil {
			return nil, fmt.Errorf("init csv ledger: %w", err)
		}
		return l, nil
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}

func setupLogging(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	return nil
}
