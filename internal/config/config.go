package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"IDXForecast/internal/model"
)

// DefaultStocks is the symbol universe used when the config lists none.
var DefaultStocks = []model.Stock{
	{Symbol: "ADRO.JK", Name: "PT Alamtri Resources Indonesia Tbk (ADRO)"},
	{Symbol: "ASII.JK", Name: "Astra International Tbk (ASII)"},
	{Symbol: "BBCA.JK", Name: "Bank Central Asia Tbk (BBCA)"},
	{Symbol: "BBNI.JK", Name: "Bank Negara Indonesia Persero Tbk (BBNI)"},
	{Symbol: "BBRI.JK", Name: "Bank Rakyat Indonesia Persero Tbk (BBRI)"},
	{Symbol: "BMRI.JK", Name: "Bank Mandiri Persero Tbk (BMRI)"},
	{Symbol: "ICBP.JK", Name: "Indofood CBP Sukses Makmur Tbk (ICBP)"},
	{Symbol: "PTBA.JK", Name: "Bukit Asam Tbk (PTBA)"},
	{Symbol: "TLKM.JK", Name: "Telkom Indonesia Persero Tbk (TLKM)"},
	{Symbol: "TOWR.JK", Name: "Sarana Menara Nusantara Tbk (TOWR)"},
}

// Config holds all application configuration.
type Config struct {
	Stocks []model.Stock `yaml:"stocks" validate:"required,min=1,dive"`
	Market struct {
		Timezone    string `yaml:"timezone" default:"Asia/Jakarta" validate:"required"`
		CloseHour   int    `yaml:"close_hour" default:"16" validate:"gte=0,lte=23"`
		CloseMinute int    `yaml:"close_minute" default:"30" validate:"gte=0,lte=59"`
	} `yaml:"market"`
	DataSource struct {
		Provider string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest mock"`
		BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey   string        `yaml:"api_key"`
		Range    string        `yaml:"range" default:"6mo" validate:"required"`
		Timeout  time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	} `yaml:"data_source"`
	Models struct {
		Dir        string `yaml:"dir" default:"models" validate:"required"`
		TrainRange string `yaml:"train_range" default:"5y" validate:"required"`
	} `yaml:"models"`
	Ledger struct {
		Backend    string `yaml:"backend" default:"csv" validate:"oneof=csv sqlite memory"`
		CSVPath    string `yaml:"csv_path" default:"data/prediction_history.csv"`
		SQLitePath string `yaml:"sqlite_path" default:"data/idxforecast.db"`
	} `yaml:"ledger"`
	Server struct {
		Addr            string        `yaml:"addr" default:":8080" validate:"required"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Schedule struct {
		Enabled   bool   `yaml:"enabled"`
		DailyCron string `yaml:"daily_cron" default:"0 45 16 * * 1-5"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		cfg.Models.Dir = v
	}
	if v := os.Getenv("LEDGER_BACKEND"); v != "" {
		cfg.Ledger.Backend = v
	}
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.Ledger.CSVPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Ledger.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	if len(cfg.Stocks) == 0 {
		cfg.Stocks = append([]model.Stock(nil), DefaultStocks...)
	}
	return cfg, nil
}

// Validate checks field constraints and that symbols are unique.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("invalid config: data_source.base_url is required for the rest provider")
	}
	seen := make(map[string]bool, len(c.Stocks))
	for _, s := range c.Stocks {
		if seen[s.Symbol] {
			return fmt.Errorf("invalid config: duplicate stock %s", s.Symbol)
		}
		seen[s.Symbol] = true
	}
	return nil
}

// StockNames maps each configured symbol to its display name.
func (c *Config) StockNames() map[string]string {
	m := make(map[string]string, len(c.Stocks))
	for _, s := range c.Stocks {
		m[s.Symbol] = s.Name
	}
	return m
}
