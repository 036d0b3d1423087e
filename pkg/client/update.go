package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Update is one parsed index notification from the collector.
type Update struct {
	Index     string
	Timestamp time.Time
	Value     float64
}

// ParseUpdate parses a collector text frame of the form
// "INDEX: <name> | TIMESTAMP: <rfc3339> | VALUE: <decimal>".
func ParseUpdate(message string) (Update, error) {
	parts := strings.Split(message, " | ")
	if len(parts) != 3 {
		return Update{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedUpdate, len(parts))
	}

	name, ok := strings.CutPrefix(parts[0], "INDEX: ")
	if !ok || name == "" {
		return Update{}, fmt.Errorf("%w: missing index name", ErrMalformedUpdate)
	}

	rawTimestamp, ok := strings.CutPrefix(parts[1], "TIMESTAMP: ")
	if !ok {
		return Update{}, fmt.Errorf("%w: missing timestamp", ErrMalformedUpdate)
	}
	timestamp, err := time.Parse(time.RFC3339, rawTimestamp)
	if err != nil {
		return Update{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedUpdate, rawTimestamp)
	}

	rawValue, ok := strings.CutPrefix(parts[2], "VALUE: ")
	if !ok {
		return Update{}, fmt.Errorf("%w: missing value", ErrMalformedUpdate)
	}
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return Update{}, fmt.Errorf("%w: invalid value %q", ErrMalformedUpdate, rawValue)
	}

	return Update{Index: name, Timestamp: timestamp, Value: value}, nil
}
