package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IDXForecast/internal/model"
	"IDXForecast/internal/regressor"
)

func writeTestConfig(t *testing.T) (cfgPath, modelDir string) {
	t.Helper()
	dir := t.TempDir()
	modelDir = filepath.Join(dir, "models")
	cfgPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
stocks:
  - symbol: BBCA.JK
    name: Bank Central Asia Tbk (BBCA)
data_source:
  provider: mock
models:
  dir: %s
ledger:
  backend: memory
metrics:
  enabled: false
log:
  level: error
`, modelDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, modelDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	cfgPath, modelDir := writeTestConfig(t)
	store := regressor.NewStore(modelDir)
	require.NoError(t, store.Save("BBCA.JK", &regressor.Artifact{
		Symbol:       "BBCA.JK",
		Kind:         regressor.KindLinear,
		Features:     model.FeatureNames,
		Coefficients: []float64{1, 0, 0},
	}))

	out, err := run(t, "--config", cfgPath, "predict", "bbca.jk")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "BBCA.JK", res["symbol"])
	assert.Greater(t, res["predicted_price"], 0.0)
}

func TestPredictCommand_MissingModel(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	_, err := run(t, "--config", cfgPath, "predict", "BBCA.JK")
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

func TestStocksAndHistoryCommands(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	out, err := run(t, "--config", cfgPath, "stocks")
	require.NoError(t, err)
	assert.Contains(t, out, "BBCA.JK")

	out, err = run(t, "--config", cfgPath, "history", "BBCA.JK")
	require.NoError(t, err)
	assert.Contains(t, out, `"accuracy": "-"`)

	_, err = run(t, "--config", cfgPath, "history", "NOPE.JK")
	assert.ErrorIs(t, err, model.ErrUnknownSymbol)
}
