// Package index computes weighted composite index values from feed observations.
package index

import (
	"time"

	"tc.com/index-collector/pkg/smoothing"
)

// Feed is one resolved price feed referenced by an index.
type Feed struct {
	ID       string
	Exchange string
	Symbol   string // exchange-specific symbol format
	Weight   int    // percentage 1-100, scoped to the owning index
}

// Definition is a named weighted composite of feeds sharing a currency pair.
type Definition struct {
	Name      string
	Feeds     []Feed
	Smoothing smoothing.Policy
}

// Observation is one raw price sample from a single feed poll.
type Observation struct {
	FeedID    string
	Timestamp time.Time
	Price     float64
}

// Result is one published index value for a calculation cycle.
type Result struct {
	Name      string
	Timestamp time.Time
	Value     float64
}
