package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Stocks, 10)
	assert.Equal(t, "Asia/Jakarta", cfg.Market.Timezone)
	assert.Equal(t, 16, cfg.Market.CloseHour)
	assert.Equal(t, 30, cfg.Market.CloseMinute)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "6mo", cfg.DataSource.Range)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, "csv", cfg.Ledger.Backend)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "Bank Central Asia Tbk (BBCA)", cfg.StockNames()["BBCA.JK"])
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stocks:
  - symbol: XYZ.JK
    name: Test Corp
ledger:
  backend: sqlite
metrics:
  enabled: false
`), 0o644))
	t.Setenv("MODEL_DIR", "/srv/models")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Stocks, 1)
	assert.Equal(t, "XYZ.JK", cfg.Stocks[0].Symbol)
	assert.Equal(t, "sqlite", cfg.Ledger.Backend)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/srv/models", cfg.Models.Dir)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Ledger.Backend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.Ledger.Backend = "csv"
	cfg.DataSource.Provider = "rest"
	assert.Error(t, cfg.Validate(), "rest provider needs base url")

	cfg.DataSource.Provider = "yahoo"
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate(), "chat id required with token")

	cfg.Telegram.ChatID = "42"
	cfg.Stocks = append(cfg.Stocks, cfg.Stocks[0])
	assert.Error(t, cfg.Validate(), "duplicate symbol")
}
