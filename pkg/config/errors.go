// Package config provides configuration loading and validation for the index collector.
package config

import "errors"

var (
	// ErrNoIndices indicates that no indices are configured.
	ErrNoIndices = errors.New("at least one index must be configured")
	// ErrInvalidIndexName indicates that an index name does not encode a currency pair.
	ErrInvalidIndexName = errors.New("index name must encode base and quote currency, e.g. BTC-USD-INDEX")
	// ErrNoFeedReferences indicates that an index references no feeds.
	ErrNoFeedReferences = errors.New("index must reference at least one feed")
	// ErrFeedNotFound indicates a reference to a feed that is not configured.
	ErrFeedNotFound = errors.New("referenced feed does not exist")
	// ErrFeedDisabled indicates a reference to a disabled feed.
	ErrFeedDisabled = errors.New("referenced feed is disabled")
	// ErrCurrencyMismatch indicates a feed whose currency pair does not match its index.
	ErrCurrencyMismatch = errors.New("feed currency does not match index currency")
	// ErrInvalidWeight indicates a feed weight outside the 1-100 range.
	ErrInvalidWeight = errors.New("feed weight must be between 1 and 100")
	// ErrWeightSum indicates that an index's feed weights do not sum to 100.
	ErrWeightSum = errors.New("feed weights must sum to 100")
	// ErrExchangeRequired indicates a feed without an exchange.
	ErrExchangeRequired = errors.New("feed exchange must be specified")
	// ErrCurrencyRequired indicates a feed without a resolvable symbol.
	ErrCurrencyRequired = errors.New("feed must specify base and quote currency or an explicit symbol")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
