// Package smoothing provides the smoothing strategies applied to raw index values.
package smoothing

import "errors"

var (
	// ErrUnknownType indicates that the smoothing type is not one of none, sma or ema.
	ErrUnknownType = errors.New("unknown smoothing type")
)
