package regressor

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IDXForecast/internal/model"
)

func TestLinearModel_Predict(t *testing.T) {
	m := &LinearModel{Intercept: 1, Coefficients: []float64{0.5, 0.25, 100}}
	got := m.Predict(model.FeatureRow{Close: 100, EMA10: 80, Return: 0.01})
	assert.InDelta(t, 1+50+20+1, got, 1e-12)
}

func TestForestModel_Predict(t *testing.T) {
	a := &Artifact{
		Kind: KindForest,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 100, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: 90},
				{Left: -1, Right: -1, Value: 110},
			}},
			{Nodes: []Node{{Value: 100}}},
		},
	}
	m, err := a.Build()
	require.NoError(t, err)

	assert.Equal(t, 95.0, m.Predict(model.FeatureRow{Close: 100}))
	assert.Equal(t, 105.0, m.Predict(model.FeatureRow{Close: 101}))
}

func TestArtifact_BuildRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		a    Artifact
	}{
		{"unknown kind", Artifact{Kind: "svm"}},
		{"short coefficients", Artifact{Kind: KindLinear, Coefficients: []float64{1}}},
		{"no trees", Artifact{Kind: KindForest}},
		{"dangling child", Artifact{Kind: KindForest, Trees: []Tree{{Nodes: []Node{{Left: 1, Right: 5}}}}}},
		{"self loop", Artifact{Kind: KindForest, Trees: []Tree{{Nodes: []Node{{Left: 1, Right: 2}, {Left: 1, Right: 2}, {Value: 1}}}}}},
		{"missing right child", Artifact{Kind: KindForest, Trees: []Tree{{Nodes: []Node{{Left: 1}, {Value: 1}}}}}},
		{"leaf marker on one side", Artifact{Kind: KindForest, Trees: []Tree{{Nodes: []Node{{Left: -1, Right: 1}, {Value: 1}}}}}},
		{"bad feature", Artifact{Kind: KindForest, Trees: []Tree{{Nodes: []Node{{Feature: 7, Left: 1, Right: 2}, {Value: 1}, {Value: 2}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.a.Build()
			assert.ErrorIs(t, err, model.ErrInvalidModel)
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load("XYZ.JK")
	assert.ErrorIs(t, err, model.ErrModelNotFound)

	_, err = s.Load("../etc/passwd")
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

func TestStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	a := &Artifact{Symbol: "BBCA.JK", Kind: KindLinear, Intercept: 2, Coefficients: []float64{1, 0, 0}}
	require.NoError(t, s.Save("BBCA.JK", a))
	assert.FileExists(t, filepath.Join(dir, "BBCA.JK_model.json"))

	m1, err := s.Load("BBCA.JK")
	require.NoError(t, err)
	m2, err := s.Load("BBCA.JK")
	require.NoError(t, err)

	row := model.FeatureRow{Close: 9000, EMA10: 8900, Return: 0.01}
	assert.Equal(t, 9002.0, m1.Predict(row))
	assert.Equal(t, m1.Predict(row), m2.Predict(row))
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BBRI.JK_model.json"), []byte("{not json"), 0o644))
	_, err := NewStore(dir).Load("BBRI.JK")
	assert.ErrorIs(t, err, model.ErrInvalidModel)
}

func TestFitLinear_RecoversCoefficients(t *testing.T) {
	const n = 60
	rows := make([]model.FeatureRow, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 1000.0
	for i := 0; i < n; i++ {
		rows[i] = model.FeatureRow{
			Date:   start.AddDate(0, 0, i),
			Close:  price,
			EMA10:  price + 15*math.Sin(float64(i)),
			Return: 0.02 * math.Cos(1.7*float64(i)),
		}
		price = 20 + 0.9*rows[i].Close + 0.08*rows[i].EMA10 + 300*rows[i].Return
	}

	a, err := FitLinear("TEST.JK", rows)
	require.NoError(t, err)
	assert.Equal(t, KindLinear, a.Kind)
	assert.Equal(t, n-1, a.Samples)
	assert.InDelta(t, 20, a.Intercept, 1e-4)
	assert.InDelta(t, 0.9, a.Coefficients[0], 1e-6)
	assert.InDelta(t, 0.08, a.Coefficients[1], 1e-6)
	assert.InDelta(t, 300, a.Coefficients[2], 1e-4)
}

func TestFitLinear_Insufficient(t *testing.T) {
	_, err := FitLinear("TEST.JK", []model.FeatureRow{{Close: 1}, {Close: 2}})
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	// Three samples cannot determine three coefficients and an intercept.
	rows := []model.FeatureRow{{Close: 1}, {Close: 2, Return: 1}, {Close: 3, Return: 0.5}, {Close: 4, Return: 0.3}}
	_, err = FitLinear("TEST.JK", rows)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}
