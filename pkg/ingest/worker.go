// Package ingest polls market-data sources and feeds observations to the calculator.
package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"tc.com/index-collector/pkg/exchange"
	"tc.com/index-collector/pkg/index"
	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/metrics"
)

const (
	defaultPollInterval = 5 * time.Second

	// failureLogThreshold is the consecutive-failure count at which the
	// per-iteration fetch error escalates to a warning about the streak.
	failureLogThreshold = 5
)

// Store is the subset of the storage layer a worker needs. A nil Store
// disables persistence.
type Store interface {
	SaveObservation(ctx context.Context, obs index.Observation) error
}

// Worker polls one feed's exchange on a fixed cadence and emits observations
// onto the shared channel. Fetch failures are never fatal; the worker runs
// until shutdown.
type Worker struct {
	feed     index.Feed
	exchange exchange.Exchange
	out      chan<- index.Observation
	store    Store
	logger   *logging.Logger

	pollInterval time.Duration
	failures     atomic.Int32
}

// NewWorker creates a worker for one feed.
func NewWorker(feed index.Feed, ex exchange.Exchange, out chan<- index.Observation, store Store, logger *logging.Logger) *Worker {
	return &Worker{
		feed:         feed,
		exchange:     ex,
		out:          out,
		store:        store,
		logger:       logger,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval overrides the default poll cadence. Call before Run.
func (w *Worker) SetPollInterval(d time.Duration) {
	if d > 0 {
		w.pollInterval = d
	}
}

// ConsecutiveFailures returns the current consecutive fetch failure count.
func (w *Worker) ConsecutiveFailures() int {
	return int(w.failures.Load())
}

// Run polls until ctx is canceled. A send on a full channel blocks the
// worker; backpressure is intentional. Observations are persisted before the
// channel send, so nothing fetched is lost when shutdown interrupts a send.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Starting feed worker",
		"feed", w.feed.ID,
		"exchange", w.feed.Exchange,
		"symbol", w.feed.Symbol)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Feed worker stopping", "feed", w.feed.ID)
			return
		default:
		}

		w.poll(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("Feed worker stopping", "feed", w.feed.ID)
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	price, err := w.exchange.FetchPrice(ctx, w.feed.Symbol)
	if err != nil {
		failures := w.failures.Add(1)
		metrics.RecordFetchFailure(w.feed.ID, w.feed.Exchange)

		if failures >= failureLogThreshold {
			w.logger.Warn("Feed fetch failing repeatedly",
				"feed", w.feed.ID,
				"exchange", w.feed.Exchange,
				"symbol", w.feed.Symbol,
				"consecutive_failures", failures,
				"error", err)
		} else {
			w.logger.Error("Failed to fetch price",
				"feed", w.feed.ID,
				"exchange", w.feed.Exchange,
				"symbol", w.feed.Symbol,
				"error", err)
		}
		return
	}

	w.failures.Store(0)
	metrics.RecordFeedUpdate(w.feed.ID)

	obs := index.Observation{
		FeedID:    w.feed.ID,
		Timestamp: time.Now().UTC(),
		Price:     price,
	}

	w.logger.Debug("Fetched observation",
		"feed", w.feed.ID,
		"price", price,
		"timestamp", obs.Timestamp)

	if w.store != nil {
		if err := w.store.SaveObservation(ctx, obs); err != nil {
			w.logger.Error("Failed to persist observation", "feed", w.feed.ID, "error", err)
		}
	}

	select {
	case w.out <- obs:
	case <-ctx.Done():
		// Shutdown interrupted the send. The observation was already
		// persisted above when a store is configured.
		if w.store == nil {
			w.logger.Info("Dropping in-flight observation during shutdown", "feed", w.feed.ID)
		}
	}
}
