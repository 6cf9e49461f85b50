package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"IDXForecast/internal/model"
)

// AccuracyWindow is the number of trailing rows scored by the accuracy estimate.
const AccuracyWindow = 10

// CalculateMAPE returns the mean absolute percentage error of predicted against
// actual, rounded to 2 decimals. It never fails: empty or mismatched input, a
// zero actual price or a non-finite result yield an invalid Accuracy.
func CalculateMAPE(actual, predicted []float64) model.Accuracy {
	if len(actual) == 0 || len(predicted) == 0 || len(actual) != len(predicted) {
		return model.Accuracy{}
	}
	sum := 0.0
	for i := range actual {
		if actual[i] == 0 {
			return model.Accuracy{}
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	mape := sum / float64(len(actual)) * 100
	if math.IsNaN(mape) || math.IsInf(mape, 0) {
		return model.Accuracy{}
	}
	return model.Accuracy{Value: Round2(mape), Valid: true}
}

// Round2 rounds v to 2 decimals, half to even. Rounding works on the exact
// binary value, so 2.675 (stored just below the half) becomes 2.67.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloatWithExponent(v, -20).RoundBank(2).InexactFloat64()
}

// PercentageChange returns 100*(to-from)/from rounded to 2 decimals.
// ok is false when from is zero.
func PercentageChange(from, to float64) (pct float64, ok bool) {
	if from == 0 {
		return 0, false
	}
	return Round2((to - from) / from * 100), true
}
