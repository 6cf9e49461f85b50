// Package history reconciles recorded forecasts with the closes that followed.
package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"IDXForecast/internal/calculator"
	"IDXForecast/internal/calendar"
	"IDXForecast/internal/model"
	"IDXForecast/internal/recorder"
)

// CloseSource returns the close of one trading day.
type CloseSource interface {
	ActualClose(ctx context.Context, symbol string, date time.Time) (float64, error)
}

// Service joins ledger records with actual closes.
type Service struct {
	Ledger recorder.Ledger
	Closes CloseSource
	Stocks map[string]string
}

// ActualDate is the day whose close a record forecasts. A record made before
// the close targets its own date; one made after the close is checked against
// the next trading day. Holidays are not skipped.
func ActualDate(rec model.PredictionRecord) time.Time {
	if rec.BeforeClose {
		return rec.Date
	}
	return calendar.NextTradingDay(rec.Date)
}

// History returns every record of symbol, newest first, with its actual close
// when available. A failed lookup leaves ActualPrice nil and does not fail the
// report.
func (s *Service) History(ctx context.Context, symbol string) (*model.HistoryReport, error) {
	if _, ok := s.Stocks[symbol]; !ok {
		return nil, fmt.Errorf("history %q: %w", symbol, model.ErrUnknownSymbol)
	}
	records, err := s.Ledger.Query(ctx, symbol, recorder.Descending)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}

	report := &model.HistoryReport{
		Symbol: symbol,
		Name:   s.Stocks[symbol],
		Rows:   make([]model.HistoryRow, 0, len(records)),
	}
	var actual, predicted []float64
	for _, rec := range records {
		row := model.HistoryRow{PredictionRecord: rec, ActualDate: ActualDate(rec)}
		price, err := s.Closes.ActualClose(ctx, symbol, row.ActualDate)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).
				Str("date", row.ActualDate.Format(model.DateLayout)).
				Msg("actual close unavailable")
		} else {
			row.ActualPrice = &price
			if price != 0 {
				pct := calculator.Round2(math.Abs(price-rec.PredictedPrice) / price * 100)
				row.ErrorPct = &pct
			}
			actual = append(actual, price)
			predicted = append(predicted, rec.PredictedPrice)
		}
		report.Rows = append(report.Rows, row)
	}
	report.Accuracy = calculator.CalculateMAPE(actual, predicted)
	return report, nil
}
