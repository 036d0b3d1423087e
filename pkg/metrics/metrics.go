// Package metrics provides Prometheus metrics for the index collector.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedUpdatesTotal counts observations successfully fetched per feed.
	FeedUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_updates_total",
			Help: "Total number of price observations fetched from feeds",
		},
		[]string{"feed"},
	)

	// FeedFetchFailuresTotal counts fetch failures per feed and exchange.
	FeedFetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_failures_total",
			Help: "Total number of failed price fetches",
		},
		[]string{"feed", "exchange"},
	)

	// IndexValue is the most recently published smoothed value per index.
	IndexValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "index_value",
			Help: "Latest smoothed value per index",
		},
		[]string{"index"},
	)

	// CalculationDuration is a histogram of calculation cycle durations.
	CalculationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_calculation_duration_seconds",
			Help:    "Duration of index calculation cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EmptyCyclesTotal counts calculation cycles that produced no results.
	EmptyCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "empty_calculation_cycles_total",
			Help: "Total number of calculation cycles with no index results",
		},
	)

	// SessionsActive is the number of connected broadcast subscribers.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_sessions_active",
			Help: "Number of active WebSocket subscriber sessions",
		},
	)

	// MessagesSentTotal counts index update messages sent to subscribers.
	MessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_messages_sent_total",
			Help: "Total number of index update messages sent to subscribers",
		},
		[]string{"index"},
	)

	// ObservationsPersistedTotal counts observations written to storage.
	ObservationsPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observations_persisted_total",
			Help: "Total number of observations persisted to storage",
		},
		[]string{"feed"},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		FeedUpdatesTotal,
		FeedFetchFailuresTotal,
		IndexValue,
		CalculationDuration,
		EmptyCyclesTotal,
		SessionsActive,
		MessagesSentTotal,
		ObservationsPersistedTotal,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordFeedUpdate records a successful observation fetch.
func RecordFeedUpdate(feed string) {
	FeedUpdatesTotal.WithLabelValues(feed).Inc()
}

// RecordFetchFailure records a failed observation fetch.
func RecordFetchFailure(feed, exchange string) {
	FeedFetchFailuresTotal.WithLabelValues(feed, exchange).Inc()
}

// RecordIndexValue records the latest published value for an index.
func RecordIndexValue(index string, value float64) {
	IndexValue.WithLabelValues(index).Set(value)
}

// RecordCalculation records the duration of a calculation cycle.
func RecordCalculation(duration time.Duration) {
	CalculationDuration.Observe(duration.Seconds())
}

// RecordEmptyCycle records a calculation cycle that produced no results.
func RecordEmptyCycle() {
	EmptyCyclesTotal.Inc()
}

// RecordSessionOpened records a new subscriber session.
func RecordSessionOpened() {
	SessionsActive.Inc()
}

// RecordSessionClosed records the end of a subscriber session.
func RecordSessionClosed() {
	SessionsActive.Dec()
}

// RecordMessageSent records an index update message sent to a subscriber.
func RecordMessageSent(index string) {
	MessagesSentTotal.WithLabelValues(index).Inc()
}

// RecordObservationPersisted records an observation written to storage.
func RecordObservationPersisted(feed string) {
	ObservationsPersistedTotal.WithLabelValues(feed).Inc()
}
