package index

import (
	"fmt"
	"sync"
	"time"

	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/metrics"
	"tc.com/index-collector/pkg/smoothing"
)

// Calculator owns all feed and index state. Every mutation happens inside
// CalculateIndices under a single lock, so concurrent broadcast sessions can
// trigger calculation without coordinating with each other.
type Calculator struct {
	mu sync.Mutex

	indices    []Definition
	strategies map[string]smoothing.Strategy

	feedValues   map[string]float64
	feedHistory  map[string]*history
	indexHistory map[string]*history

	observations <-chan Observation
	logger       *logging.Logger
}

// NewCalculator creates a calculator for the given index definitions,
// consuming observations from the shared ingestion channel. State for every
// referenced feed and index is allocated up front and lives for the process
// lifetime.
func NewCalculator(indices []Definition, observations <-chan Observation, logger *logging.Logger) (*Calculator, error) {
	c := &Calculator{
		indices:      indices,
		strategies:   make(map[string]smoothing.Strategy, len(indices)),
		feedValues:   make(map[string]float64),
		feedHistory:  make(map[string]*history),
		indexHistory: make(map[string]*history, len(indices)),
		observations: observations,
		logger:       logger,
	}

	for _, def := range indices {
		strategy, err := smoothing.New(def.Smoothing)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", def.Name, err)
		}
		c.strategies[def.Name] = strategy
		c.indexHistory[def.Name] = newHistory()

		for _, feed := range def.Feeds {
			c.feedValues[feed.ID] = 0.0
			c.feedHistory[feed.ID] = newHistory()
		}
	}

	return c, nil
}

// Indices returns the configured index definitions in their configured order.
func (c *Calculator) Indices() []Definition {
	return c.indices
}

// CalculateIndices drains all queued observations, recomputes every index and
// returns one result per index that has complete feed data, in configured
// order. Indexes with any unobserved feed are skipped for the cycle.
func (c *Calculator) CalculateIndices() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordCalculation(time.Since(start))
	}()

	c.drainObservations()

	results := make([]Result, 0, len(c.indices))
	timestamp := time.Now().UTC()

	for _, def := range c.indices {
		weightedSum := 0.0
		totalWeights := 0
		missing := false

		for _, feed := range def.Feeds {
			price := c.feedValues[feed.ID]
			if price <= 0.0 {
				// 0.0 doubles as the "no data yet" sentinel.
				missing = true
				break
			}
			weightedSum += price * (float64(feed.Weight) / 100.0)
			totalWeights += feed.Weight
		}

		if missing || totalWeights == 0 {
			continue
		}

		raw := weightedSum / (float64(totalWeights) / 100.0)
		c.logger.Debug("Computed raw index value", "index", def.Name, "raw", raw)

		hist := c.indexHistory[def.Name]
		smoothed := c.strategies[def.Name].Apply(hist.Values(), raw)
		hist.PushFront(smoothed)

		c.logger.Debug("Applied smoothing",
			"index", def.Name,
			"type", def.Smoothing.Type,
			"raw", raw,
			"smoothed", smoothed)

		metrics.RecordIndexValue(def.Name, smoothed)

		results = append(results, Result{
			Name:      def.Name,
			Timestamp: timestamp,
			Value:     smoothed,
		})
	}

	if len(results) == 0 {
		c.logger.Error("Failed to calculate any indices - missing price data")
		metrics.RecordEmptyCycle()
	}

	return results
}

// drainObservations applies all currently queued observations without blocking.
func (c *Calculator) drainObservations() {
	processed := 0
	for {
		select {
		case obs := <-c.observations:
			processed++
			c.feedValues[obs.FeedID] = obs.Price
			if hist, ok := c.feedHistory[obs.FeedID]; ok {
				hist.PushFront(obs.Price)
			}
		default:
			if processed > 0 {
				c.logger.Debug("Processed feed updates", "count", processed)
			}
			return
		}
	}
}

// FeedHistory returns a copy of a feed's raw price history, most-recent-first.
func (c *Calculator) FeedHistory(feedID string) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	hist, ok := c.feedHistory[feedID]
	if !ok {
		return nil
	}
	out := make([]float64, hist.Len())
	copy(out, hist.Values())
	return out
}
