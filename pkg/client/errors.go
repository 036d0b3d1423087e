package client

import "errors"

var (
	// ErrMalformedUpdate indicates a frame that does not match the
	// collector's update format.
	ErrMalformedUpdate = errors.New("malformed index update")

	// ErrConnectionClosed indicates the server ended the session and
	// reconnection is disabled.
	ErrConnectionClosed = errors.New("connection closed by server")
)
