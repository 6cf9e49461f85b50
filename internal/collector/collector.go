package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"IDXForecast/internal/model"
)

// DefaultRange is the trailing window fetched for a prediction.
const DefaultRange = "6mo"

// Collector wraps a Fetcher with the error mapping the pipeline expects.
type Collector struct {
	Fetcher  Fetcher
	Range    string
	Location *time.Location
}

// NewCollector creates a new Collector. Dates passed to ActualClose are
// interpreted in loc.
func NewCollector(fetcher Fetcher, rng string, loc *time.Location) *Collector {
	if rng == "" {
		rng = DefaultRange
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Collector{Fetcher: fetcher, Range: rng, Location: loc}
}

// Collect fetches the trailing daily series for symbol. An empty series, or a
// source that reports no data, is model.ErrInsufficientData.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	return c.CollectRange(ctx, symbol, c.Range)
}

// CollectRange is Collect with an explicit range.
func (c *Collector) CollectRange(ctx context.Context, symbol, rng string) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, rng)
	if err != nil {
		if errors.Is(err, model.ErrMarketDataUnavailable) {
			return nil, fmt.Errorf("collect %s: %w: %w", symbol, model.ErrInsufficientData, err)
		}
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("collect %s: empty series: %w", symbol, model.ErrInsufficientData)
	}
	log.Debug().Str("symbol", symbol).Str("source", c.Fetcher.Name()).Int("bars", len(bars)).Msg("collected daily bars")
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

// ActualClose returns the close of the single trading day date. No bar for that
// day is model.ErrMarketDataUnavailable.
func (c *Collector) ActualClose(ctx context.Context, symbol string, date time.Time) (float64, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.Location)
	bars, err := c.Fetcher.FetchRange(ctx, symbol, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("actual close %s %s: %w", symbol, start.Format(model.DateLayout), err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("actual close %s %s: %w", symbol, start.Format(model.DateLayout), model.ErrMarketDataUnavailable)
	}
	return bars[0].Close, nil
}
