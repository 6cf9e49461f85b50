package calculator

import (
	"errors"

	"IDXForecast/internal/model"
)

// EMASpan is the smoothing span of the ema10 feature.
const EMASpan = 10

// CalculateEMA returns the recursive exponential moving average of prices with
// alpha = 2/(span+1), seeded with the first price.
func CalculateEMA(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(prices) == 0 {
		return nil, errors.New("no prices for EMA calculation")
	}
	alpha := 2.0 / float64(span+1)
	ema := make([]float64, len(prices))
	ema[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		ema[i] = alpha*prices[i] + (1-alpha)*ema[i-1]
	}
	return ema, nil
}

// CalculateReturns returns the simple one-period returns of prices. The first
// element has no predecessor and is reported as undefined (ok[0] == false).
func CalculateReturns(prices []float64) (returns []float64, ok []bool) {
	returns = make([]float64, len(prices))
	ok = make([]bool, len(prices))
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		returns[i] = (prices[i] - prev) / prev
		ok[i] = true
	}
	return returns, ok
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
