package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors. All violations are fatal at
// startup; nothing runs against an invalid configuration.
func Validate(cfg *Config) error {
	if len(cfg.Indices) == 0 {
		return ErrNoIndices
	}

	for id, feed := range cfg.Feeds {
		if err := validateFeedConfig(feed); err != nil {
			return fmt.Errorf("feed %q: %w", id, err)
		}
	}

	for _, idx := range cfg.Indices {
		if err := validateIndexConfig(cfg, idx); err != nil {
			return fmt.Errorf("index %q: %w", idx.Name, err)
		}
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateFeedConfig(feed FeedConfig) error {
	if feed.Exchange == "" {
		return ErrExchangeRequired
	}
	if feed.Symbol == "" && (feed.BaseCurrency == "" || feed.QuoteCurrency == "") {
		return ErrCurrencyRequired
	}
	return nil
}

func validateIndexConfig(cfg *Config, idx IndexConfig) error {
	// The index name encodes the currency pair, e.g. "BTC-USD-INDEX".
	parts := strings.Split(idx.Name, "-")
	if len(parts) < 2 {
		return fmt.Errorf("%w: got %q", ErrInvalidIndexName, idx.Name)
	}
	baseCurrency := parts[0]
	quoteCurrency := parts[1]

	if err := idx.Smoothing.Validate(); err != nil {
		return err
	}

	if len(idx.Feeds) == 0 {
		return ErrNoFeedReferences
	}

	totalWeight := 0
	for _, ref := range idx.Feeds {
		feed, ok := cfg.Feeds[ref.ID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrFeedNotFound, ref.ID)
		}
		if !feed.IsEnabled() {
			return fmt.Errorf("%w: %q", ErrFeedDisabled, ref.ID)
		}
		if feed.BaseCurrency != baseCurrency {
			return fmt.Errorf("%w: feed %q has base %q, index expects %q",
				ErrCurrencyMismatch, ref.ID, feed.BaseCurrency, baseCurrency)
		}
		if feed.QuoteCurrency != quoteCurrency {
			return fmt.Errorf("%w: feed %q has quote %q, index expects %q",
				ErrCurrencyMismatch, ref.ID, feed.QuoteCurrency, quoteCurrency)
		}
		if ref.Weight < 1 || ref.Weight > 100 {
			return fmt.Errorf("%w: feed %q has weight %d", ErrInvalidWeight, ref.ID, ref.Weight)
		}
		totalWeight += ref.Weight
	}

	if totalWeight != 100 {
		return fmt.Errorf("%w: got %d", ErrWeightSum, totalWeight)
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %s (must be one of: debug, info, warn, error)", ErrInvalidLogLevel, cfg.Level)
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
