package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stockfetcher/internal/tickers"
)

// Config holds all configuration for the stock fetcher application.
type Config struct {
	// Base URLs for upstream sources (configurable for testing)
	ScreenerBaseURL string `mapstructure:"screener_base_url"`
	YahooBaseURL    string `mapstructure:"yahoo_base_url"`

	// Price history lookup
	ExchangeSuffix string `mapstructure:"exchange_suffix"`
	HistoryDays    int    `mapstructure:"history_days"`

	// Items to fetch
	StockSymbols []string `mapstructure:"stock_symbols"`

	// Output
	DataDir  string `mapstructure:"data_dir"`
	LogDir   string `mapstructure:"log_dir"`
	LogLevel string `mapstructure:"log_level"`

	// Request retry policy
	MaxRetries       int           `mapstructure:"max_retries"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	RateLimitWaitMin time.Duration `mapstructure:"rate_limit_wait_min"`
	RateLimitWaitMax time.Duration `mapstructure:"rate_limit_wait_max"`
	NetworkWaitMin   time.Duration `mapstructure:"network_wait_min"`
	NetworkWaitMax   time.Duration `mapstructure:"network_wait_max"`

	// Batch pacing
	ThrottleEvery   int           `mapstructure:"throttle_every"`
	ThrottleWaitMin time.Duration `mapstructure:"throttle_wait_min"`
	ThrottleWaitMax time.Duration `mapstructure:"throttle_wait_max"`
	SnapshotEvery   int           `mapstructure:"snapshot_every"`

	// Requests per second per source, 0 means unlimited
	ScreenerRPS float64 `mapstructure:"screener_rps"`
	YahooRPS    float64 `mapstructure:"yahoo_rps"`
}

// defaults mirrors every key so that environment variables are always seen by
// Unmarshal.
var defaults = map[string]any{
	"screener_base_url":   "https://www.screener.in",
	"yahoo_base_url":      "https://query1.finance.yahoo.com",
	"exchange_suffix":     ".NS",
	"history_days":        2190,
	"data_dir":            "data",
	"log_dir":             "logs",
	"log_level":           "info",
	"max_retries":         3,
	"request_timeout":     10 * time.Second,
	"rate_limit_wait_min": 10 * time.Second,
	"rate_limit_wait_max": 20 * time.Second,
	"network_wait_min":    5 * time.Second,
	"network_wait_max":    10 * time.Second,
	"throttle_every":      10,
	"throttle_wait_min":   10 * time.Second,
	"throttle_wait_max":   20 * time.Second,
	"snapshot_every":      50,
	"screener_rps":        0.0,
	"yahoo_rps":           0.0,
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Every key can be set through the upper-cased environment variable of the
// same name, for example:
//   - SCREENER_BASE_URL, YAHOO_BASE_URL (optional, default to production)
//   - STOCK_SYMBOLS (comma separated, defaults to the built-in list)
//   - DATA_DIR, LOG_DIR, LOG_LEVEL
//   - MAX_RETRIES, REQUEST_TIMEOUT (e.g. "10s")
//   - THROTTLE_EVERY, SNAPSHOT_EVERY
func Load() (*Config, error) {
	v := viper.New()

	// Set up environment variable support
	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetDefault("stock_symbols", tickers.Default())

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.stockfetcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	for key := range defaults {
		v.BindEnv(key, strings.ToUpper(key))
	}
	v.BindEnv("stock_symbols", "STOCK_SYMBOLS")

	// Unmarshal config into struct (handles durations and comma separated lists)
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.StockSymbols = cleanSymbols(config.StockSymbols)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if c.ScreenerBaseURL == "" {
		problems = append(problems, "SCREENER_BASE_URL is empty")
	}
	if c.YahooBaseURL == "" {
		problems = append(problems, "YAHOO_BASE_URL is empty")
	}
	if len(c.StockSymbols) == 0 {
		problems = append(problems, "STOCK_SYMBOLS is empty")
	}
	if c.HistoryDays < 1 {
		problems = append(problems, "HISTORY_DAYS must be at least 1")
	}
	if c.MaxRetries < 1 {
		problems = append(problems, "MAX_RETRIES must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}
	if c.ThrottleEvery < 1 {
		problems = append(problems, "THROTTLE_EVERY must be at least 1")
	}
	if c.SnapshotEvery < 1 {
		problems = append(problems, "SNAPSHOT_EVERY must be at least 1")
	}
	if c.ScreenerRPS < 0 || c.YahooRPS < 0 {
		problems = append(problems, "request rates must not be negative")
	}

	windows := []struct {
		name     string
		min, max time.Duration
	}{
		{"RATE_LIMIT_WAIT", c.RateLimitWaitMin, c.RateLimitWaitMax},
		{"NETWORK_WAIT", c.NetworkWaitMin, c.NetworkWaitMax},
		{"THROTTLE_WAIT", c.ThrottleWaitMin, c.ThrottleWaitMax},
	}
	for _, w := range windows {
		if w.min < 0 || w.max < w.min {
			problems = append(problems, fmt.Sprintf("%s_MIN/%s_MAX must satisfy 0 <= min <= max", w.name, w.name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}
	return nil
}

func cleanSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
