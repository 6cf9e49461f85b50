package model

import (
	"strconv"
	"time"
)

// DateLayout is the calendar date format used in the ledger and the API.
const DateLayout = "2006-01-02"

// PredictionRecord is one ledger entry. (Date, Symbol) is unique.
type PredictionRecord struct {
	Date           time.Time `json:"date"`
	Symbol         string    `json:"symbol"`
	PredictedPrice float64   `json:"predicted_price"`
	BeforeClose    bool      `json:"before_close"`
}

// Key returns the dedupe key of the record.
func (r PredictionRecord) Key() string {
	return r.Date.Format(DateLayout) + "|" + r.Symbol
}

// Accuracy is a MAPE percentage. An invalid Accuracy renders as "-".
type Accuracy struct {
	Value float64
	Valid bool
}

// String renders the accuracy the way the UI shows it.
func (a Accuracy) String() string {
	if !a.Valid {
		return "-"
	}
	return strconv.FormatFloat(a.Value, 'f', 2, 64)
}

// MarshalJSON emits a number, or the "-" string when unavailable.
func (a Accuracy) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`"-"`), nil
	}
	return []byte(strconv.FormatFloat(a.Value, 'f', 2, 64)), nil
}

// PredictionResult is the output of a single forecast.
type PredictionResult struct {
	Symbol           string             `json:"symbol"`
	Name             string             `json:"name"`
	PredictedPrice   float64            `json:"predicted_price"`
	ReferenceClose   float64            `json:"reference_close"`
	PercentageChange float64            `json:"percentage_change"`
	Accuracy         Accuracy           `json:"accuracy"`
	TargetDate       time.Time          `json:"target_date"`
	SessionWasOpen   bool               `json:"session_was_open"`
	Features         []FeatureRow       `json:"features"`
	History          []PredictionRecord `json:"history,omitempty"`
}

// HistoryRow joins a ledger record with the close observed for it.
// ActualPrice is nil when the market data was unavailable.
type HistoryRow struct {
	PredictionRecord
	ActualDate  time.Time `json:"actual_date"`
	ActualPrice *float64  `json:"actual_price"`
	ErrorPct    *float64  `json:"error_pct,omitempty"`
}

// HistoryReport is the reconciled history of one symbol, newest first.
type HistoryReport struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Rows     []HistoryRow `json:"rows"`
	Accuracy Accuracy     `json:"accuracy"`
}
