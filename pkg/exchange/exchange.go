// Package exchange provides price source clients for external market-data APIs.
package exchange

import (
	"context"
	"fmt"
	"sync"
)

// Exchange fetches the current price of a symbol from one market-data source.
// Implementations own their symbol-formatting convention; callers pass the
// already-formatted exchange-specific symbol.
type Exchange interface {
	// Name returns the unique name of this exchange
	Name() string

	// FetchPrice fetches the current price for an exchange-specific symbol
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// Factory is a function that creates a new Exchange instance
type Factory func() Exchange

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds an exchange factory to the registry
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// Create creates a new exchange instance by name
func Create(name string) (Exchange, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, name)
	}

	return factory(), nil
}

// List returns all registered exchange names
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
