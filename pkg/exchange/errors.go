// Package exchange provides price source clients for external market-data APIs.
package exchange

import "errors"

var (
	// ErrUnknownExchange indicates that no exchange is registered under the name.
	ErrUnknownExchange = errors.New("unknown exchange")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates an unparsable response from the exchange.
	ErrInvalidResponse = errors.New("invalid response")
)
