package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMAPE(t *testing.T) {
	acc := CalculateMAPE([]float64{100, 200}, []float64{110, 190})
	assert.True(t, acc.Valid)
	// (0.10 + 0.05) / 2 * 100
	assert.InDelta(t, 7.5, acc.Value, 1e-9)
	assert.Equal(t, "7.50", acc.String())
}

func TestCalculateMAPE_Sentinel(t *testing.T) {
	tests := []struct {
		name      string
		actual    []float64
		predicted []float64
	}{
		{"empty", nil, nil},
		{"empty predicted", []float64{1}, nil},
		{"zero actual", []float64{0}, []float64{5}},
		{"length mismatch", []float64{1, 2}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := CalculateMAPE(tt.actual, tt.predicted)
			assert.False(t, acc.Valid)
			assert.Equal(t, "-", acc.String())
		})
	}
}

func TestPercentageChange(t *testing.T) {
	pct, ok := PercentageChange(100, 101)
	assert.True(t, ok)
	assert.Equal(t, 1.0, pct)

	pct, ok = PercentageChange(107, 105.93)
	assert.True(t, ok)
	assert.Equal(t, -1.0, pct)

	_, ok = PercentageChange(0, 5)
	assert.False(t, ok)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 0.38, Round2(0.375))
	assert.Equal(t, 2.67, Round2(2.675))
}
