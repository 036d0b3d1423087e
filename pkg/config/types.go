package config

import (
	"fmt"
	"time"

	"tc.com/index-collector/pkg/smoothing"
)

// Config is the root configuration structure
type Config struct {
	Feeds     map[string]FeedConfig `yaml:"feeds"`
	Indices   []IndexConfig         `yaml:"indices"`
	Ingest    IngestConfig          `yaml:"ingest"`
	Database  DatabaseConfig        `yaml:"database"`
	WebSocket WebSocketConfig       `yaml:"websocket"`
	Metrics   MetricsConfig         `yaml:"metrics"`
	Logging   LoggingConfig         `yaml:"logging"`
}

// FeedConfig configures one price feed, keyed by feed id in the config file
type FeedConfig struct {
	Exchange      string `yaml:"exchange"`
	BaseCurrency  string `yaml:"base_currency"`
	QuoteCurrency string `yaml:"quote_currency"`
	Symbol        string `yaml:"symbol"` // optional explicit exchange symbol
	Enabled       *bool  `yaml:"enabled"`
}

// IsEnabled reports whether the feed may be referenced by an index.
// Feeds are enabled unless explicitly disabled.
func (f FeedConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// ExchangeSymbol builds the exchange-specific symbol for this feed. An
// explicit symbol overrides the per-exchange formatting convention.
func (f FeedConfig) ExchangeSymbol() string {
	if f.Symbol != "" {
		return f.Symbol
	}
	switch f.Exchange {
	case "binance":
		// Binance quotes USD pairs in USDT
		if f.QuoteCurrency == "USD" {
			return f.BaseCurrency + "USDT"
		}
		return f.BaseCurrency + f.QuoteCurrency
	case "coinbase":
		return fmt.Sprintf("%s-%s", f.BaseCurrency, f.QuoteCurrency)
	default:
		return fmt.Sprintf("%s-%s", f.BaseCurrency, f.QuoteCurrency)
	}
}

// IndexConfig configures one composite index
type IndexConfig struct {
	Name      string           `yaml:"name"`
	Smoothing smoothing.Policy `yaml:"smoothing"`
	Feeds     []FeedReference  `yaml:"feeds"`
}

// FeedReference is a weighted reference from an index to a feed
type FeedReference struct {
	ID     string `yaml:"id"`
	Weight int    `yaml:"weight"`
}

// IngestConfig configures the feed polling workers
type IngestConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
}

// DatabaseConfig configures optional raw observation persistence
type DatabaseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	RetentionDays int    `yaml:"retention_days"`
}

// WebSocketConfig configures the broadcast server
type WebSocketConfig struct {
	Address string `yaml:"address"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
