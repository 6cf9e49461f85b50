package regressor

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"IDXForecast/internal/model"
)

// FitLinear fits an ordinary least squares model that predicts the next row's
// close from the current row's features. The last row has no target and is
// dropped.
func FitLinear(symbol string, rows []model.FeatureRow) (*Artifact, error) {
	n := len(rows) - 1
	nf := len(model.FeatureNames)
	if n < nf+1 {
		return nil, fmt.Errorf("fit %s: %d samples: %w", symbol, max(n, 0), model.ErrInsufficientData)
	}

	x := mat.NewDense(n, nf+1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, v := range rows[i].Vector() {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, rows[i+1].Close)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		// A Condition error still carries a usable least squares solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("fit %s: %w", symbol, err)
		}
		log.Warn().Str("symbol", symbol).Float64("condition", float64(cond)).Msg("ill-conditioned feature matrix")
	}

	coef := make([]float64, nf)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &Artifact{
		Symbol:       symbol,
		Kind:         KindLinear,
		Features:     model.FeatureNames,
		Intercept:    beta.AtVec(0),
		Coefficients: coef,
		TrainedAt:    time.Now().UTC(),
		Samples:      n,
	}, nil
}
