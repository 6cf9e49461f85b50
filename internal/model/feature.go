package model

import "time"

// FeatureRow is one model-ready row derived from a daily bar.
// It is also the actual close series charted next to the predictions.
type FeatureRow struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	EMA10  float64   `json:"ema10"`
	Return float64   `json:"return"`
}

// Vector returns the features in the order the models are trained on:
// close, ema10, return.
func (f FeatureRow) Vector() []float64 {
	return []float64{f.Close, f.EMA10, f.Return}
}

// FeatureNames lists the columns of FeatureRow.Vector.
var FeatureNames = []string{"close", "ema10", "return"}
