package collector

import (
	"context"
	"time"

	"IDXForecast/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	// FetchDailyBars returns the trailing daily bars for a Yahoo-style range
	// such as "6mo" or "5y", oldest first.
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error)
	// FetchRange returns the daily bars in [start, end), oldest first.
	FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
