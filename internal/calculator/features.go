package calculator

import (
	"fmt"
	"math"

	"IDXForecast/internal/model"
)

// BuildFeatures turns daily bars into the feature table the models consume.
// Rows whose ema10 or return is undefined are dropped, which always includes
// the first bar. An empty result is reported as model.ErrInsufficientData.
func BuildFeatures(bars []model.OHLCV) ([]model.FeatureRow, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("build features: no bars: %w", model.ErrInsufficientData)
	}
	closes := extractCloses(bars)
	ema, err := CalculateEMA(closes, EMASpan)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	returns, defined := CalculateReturns(closes)

	rows := make([]model.FeatureRow, 0, len(bars)-1)
	for i, b := range bars {
		if !defined[i] || !finite(closes[i], ema[i], returns[i]) {
			continue
		}
		rows = append(rows, model.FeatureRow{
			Date:   b.Time,
			Close:  closes[i],
			EMA10:  ema[i],
			Return: returns[i],
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("build features from %d bars: %w", len(bars), model.ErrInsufficientData)
	}
	return rows, nil
}

// Tail returns the last n rows, or all of them when fewer are available.
func Tail(rows []model.FeatureRow, n int) []model.FeatureRow {
	if n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
