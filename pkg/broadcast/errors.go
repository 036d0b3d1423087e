// Package broadcast streams index results to WebSocket subscribers.
package broadcast

import "errors"

var (
	// ErrAddrInUse indicates that the broadcast address is already bound by
	// another process.
	ErrAddrInUse = errors.New("broadcast address already in use")
	// ErrBindFailed indicates a bind failure other than an in-use address.
	ErrBindFailed = errors.New("failed to bind broadcast address")
	// ErrNotListening indicates Serve was called before Listen.
	ErrNotListening = errors.New("server is not listening")
)
