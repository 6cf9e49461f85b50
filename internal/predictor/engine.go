// Package predictor produces the next-close forecast for one symbol and
// records it in the history ledger.
package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"IDXForecast/internal/calculator"
	"IDXForecast/internal/calendar"
	"IDXForecast/internal/collector"
	"IDXForecast/internal/model"
	"IDXForecast/internal/recorder"
	"IDXForecast/internal/regressor"
)

// ModelLoader supplies the fitted model for a symbol.
type ModelLoader interface {
	Load(symbol string) (regressor.Model, error)
}

// Observer is notified of every forecast outcome. metrics.Recorder implements it.
type Observer interface {
	ObservePrediction(symbol string, res *model.PredictionResult, err error, elapsed time.Duration)
}

// Engine wires the feature builder, model store, calendar and ledger.
type Engine struct {
	Collector *collector.Collector
	Models    ModelLoader
	Ledger    recorder.Ledger
	Calendar  *calendar.Calendar
	Clock     calendar.Clock
	Stocks    map[string]string
	Observer  Observer
}

// Predict fetches the trailing series for symbol, loads its model and runs
// Forecast.
func (e *Engine) Predict(ctx context.Context, symbol string) (res *model.PredictionResult, err error) {
	start := time.Now()
	defer func() {
		if e.Observer != nil {
			e.Observer.ObservePrediction(symbol, res, err, time.Since(start))
		}
	}()

	if _, ok := e.Stocks[symbol]; !ok {
		return nil, fmt.Errorf("predict %q: %w", symbol, model.ErrUnknownSymbol)
	}
	m, err := e.Models.Load(symbol)
	if err != nil {
		return nil, err
	}
	series, err := e.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return e.Forecast(ctx, symbol, series.Bars, m)
}

// Forecast predicts the next close from bars with m, compares it to the
// reference close for the current session and records it in the ledger.
//
// While the session is open the latest bar is today's unfinished one, so the
// reference is the previous close and the forecast targets today. After the
// close the reference is the latest close and the forecast targets the next
// trading day.
func (e *Engine) Forecast(ctx context.Context, symbol string, bars []model.OHLCV, m regressor.Model) (*model.PredictionResult, error) {
	rows, err := calculator.BuildFeatures(bars)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}

	latest := rows[len(rows)-1]
	predicted := m.Predict(latest)

	now := e.Clock.Now()
	open := e.Calendar.IsOpen(now)
	today := e.Calendar.Today(now)

	var (
		reference float64
		target    time.Time
	)
	if open {
		if len(bars) < 2 {
			return nil, fmt.Errorf("forecast %s: no previous close during session: %w", symbol, model.ErrInsufficientData)
		}
		reference = bars[len(bars)-2].Close
		target = today
	} else {
		reference = bars[len(bars)-1].Close
		target = calendar.NextTradingDay(today.AddDate(0, 0, 1))
	}

	change, ok := calculator.PercentageChange(reference, predicted)
	if !ok {
		return nil, fmt.Errorf("forecast %s: zero reference close: %w", symbol, model.ErrInsufficientData)
	}

	window := calculator.Tail(rows, calculator.AccuracyWindow)
	actual := make([]float64, len(window))
	for i, r := range window {
		actual[i] = r.Close
	}
	accuracy := calculator.CalculateMAPE(actual, regressor.PredictAll(m, window))

	rec := model.PredictionRecord{
		Date:           target,
		Symbol:         symbol,
		PredictedPrice: predicted,
		BeforeClose:    open,
	}
	if err := e.Ledger.Record(ctx, rec); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}
	history, err := e.Ledger.Query(ctx, symbol, recorder.Ascending)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("query ledger for chart failed")
	}

	log.Info().
		Str("symbol", symbol).
		Float64("predicted", predicted).
		Float64("reference", reference).
		Float64("change_pct", change).
		Str("target", target.Format(model.DateLayout)).
		Bool("before_close", open).
		Msg("forecast recorded")

	return &model.PredictionResult{
		Symbol:           symbol,
		Name:             e.Stocks[symbol],
		PredictedPrice:   predicted,
		ReferenceClose:   reference,
		PercentageChange: change,
		Accuracy:         accuracy,
		TargetDate:       target,
		SessionWasOpen:   open,
		Features:         rows,
		History:          history,
	}, nil
}
