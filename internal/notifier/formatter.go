package notifier

import (
	"errors"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"IDXForecast/internal/calculator"
	"IDXForecast/internal/model"
)

// FormatPrediction formats a single forecast into a Telegram message.
func FormatPrediction(res *model.PredictionResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s\n", html.EscapeString(res.Name), res.Symbol))
	b.WriteString(fmt.Sprintf("Target date: %s\n", res.TargetDate.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Predicted close: Rp %s\n", formatPrice(res.PredictedPrice)))
	b.WriteString(fmt.Sprintf("Reference close: Rp %s (%s)\n", formatPrice(res.ReferenceClose), formatChange(res.PercentageChange)))
	b.WriteString(fmt.Sprintf("MAPE (last %d days): %s\n", calculator.AccuracyWindow, formatAccuracy(res.Accuracy)))
	if res.SessionWasOpen {
		b.WriteString("\n⏳ Session still open, forecasting today's close.\n")
	}
	return b.String()
}

// FormatDigest formats the post-close forecast run for all stocks.
func FormatDigest(results []*model.PredictionResult, failures map[string]error) string {
	var b strings.Builder
	b.WriteString("📊 <b>IDX Forecast digest</b>\n\n")
	for _, res := range results {
		b.WriteString(fmt.Sprintf("%s: Rp %s (%s) MAPE %s\n",
			res.Symbol, formatPrice(res.PredictedPrice), formatChange(res.PercentageChange), formatAccuracy(res.Accuracy)))
	}
	if len(failures) > 0 {
		b.WriteString("\n⚠️ Failed:\n")
		for _, symbol := range slices.Sorted(maps.Keys(failures)) {
			b.WriteString(fmt.Sprintf("  %s: %s\n", symbol, FormatError(failures[symbol])))
		}
	}
	return b.String()
}

// FormatHistory formats the reconciled ledger of one symbol.
func FormatHistory(rep *model.HistoryReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History %s</b> | %s\n\n", html.EscapeString(rep.Name), rep.Symbol))
	if len(rep.Rows) == 0 {
		b.WriteString("No predictions recorded yet.\n")
		return b.String()
	}
	for _, row := range rep.Rows {
		actual := "-"
		if row.ActualPrice != nil {
			actual = formatPrice(*row.ActualPrice)
		}
		errPct := ""
		if row.ErrorPct != nil {
			errPct = fmt.Sprintf(" err %.2f%%", *row.ErrorPct)
		}
		b.WriteString(fmt.Sprintf("%s → %s: pred %s, actual %s%s\n",
			row.Date.Format(model.DateLayout), row.ActualDate.Format(model.DateLayout),
			formatPrice(row.PredictedPrice), actual, errPct))
	}
	b.WriteString(fmt.Sprintf("\nMAPE: %s\n", formatAccuracy(rep.Accuracy)))
	return b.String()
}

// FormatStocks lists the configured symbol universe.
func FormatStocks(stocks []model.Stock) string {
	var b strings.Builder
	b.WriteString("🏦 <b>Available stocks</b>\n\n")
	for _, s := range stocks {
		b.WriteString(fmt.Sprintf("%s  %s\n", s.Symbol, html.EscapeString(s.Name)))
	}
	return b.String()
}

// FormatError maps pipeline errors to user-facing text.
func FormatError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrUnknownSymbol):
		return "❌ Unknown symbol. Use /stocks to list available symbols."
	case errors.Is(err, model.ErrModelNotFound):
		return "❌ No trained model for this symbol."
	case errors.Is(err, model.ErrInvalidModel):
		return "❌ Model artifact for this symbol is corrupt."
	case errors.Is(err, model.ErrInsufficientData):
		return "❌ Not enough market data to make a prediction."
	case errors.Is(err, model.ErrMarketDataUnavailable), errors.Is(err, model.ErrUpstream):
		return "❌ Market data source is unavailable, try again later."
	default:
		return "❌ Internal error, try again later."
	}
}

func formatPrice(p float64) string {
	return humanize.CommafWithDigits(p, 2)
}

func formatChange(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

func formatAccuracy(a model.Accuracy) string {
	if !a.Valid {
		return a.String()
	}
	return a.String() + "%"
}
