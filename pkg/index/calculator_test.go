package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/smoothing"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.Init("error", "json", "stderr")
	require.NoError(t, err)
	return logger
}

func btcIndex(policy smoothing.Policy) Definition {
	return Definition{
		Name: "BTC-USD-INDEX",
		Feeds: []Feed{
			{ID: "binance-btc", Exchange: "binance", Symbol: "BTCUSDT", Weight: 70},
			{ID: "coinbase-btc", Exchange: "coinbase", Symbol: "BTC-USD", Weight: 30},
		},
		Smoothing: policy,
	}
}

func TestCalculateWeightedComposite(t *testing.T) {
	obs := make(chan Observation, 10)
	calc, err := NewCalculator([]Definition{btcIndex(smoothing.Policy{Type: smoothing.TypeNone})}, obs, testLogger(t))
	require.NoError(t, err)

	now := time.Now().UTC()
	obs <- Observation{FeedID: "binance-btc", Timestamp: now, Price: 50000.0}
	obs <- Observation{FeedID: "coinbase-btc", Timestamp: now, Price: 50100.0}

	results := calc.CalculateIndices()
	require.Len(t, results, 1)
	assert.Equal(t, "BTC-USD-INDEX", results[0].Name)
	// 50000*0.7 + 50100*0.3 = 50030
	assert.InDelta(t, 50030.0, results[0].Value, 1e-9)
}

func TestCalculateSkipsIndexWithMissingFeed(t *testing.T) {
	obs := make(chan Observation, 10)
	calc, err := NewCalculator([]Definition{btcIndex(smoothing.Policy{Type: smoothing.TypeNone})}, obs, testLogger(t))
	require.NoError(t, err)

	// Only one of the two feeds has reported.
	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 50000.0}

	assert.Empty(t, calc.CalculateIndices())

	// A zero price is indistinguishable from "no data yet" and also skips.
	obs <- Observation{FeedID: "coinbase-btc", Timestamp: time.Now(), Price: 0.0}
	assert.Empty(t, calc.CalculateIndices())

	// Once both feeds have positive values the index is published.
	obs <- Observation{FeedID: "coinbase-btc", Timestamp: time.Now(), Price: 50100.0}
	assert.Len(t, calc.CalculateIndices(), 1)
}

func TestCalculateResultsInConfiguredOrder(t *testing.T) {
	obs := make(chan Observation, 10)
	indices := []Definition{
		{
			Name:      "ETH-USD-INDEX",
			Feeds:     []Feed{{ID: "binance-eth", Exchange: "binance", Symbol: "ETHUSDT", Weight: 100}},
			Smoothing: smoothing.Policy{Type: smoothing.TypeNone},
		},
		{
			Name:      "BTC-USD-INDEX",
			Feeds:     []Feed{{ID: "binance-btc", Exchange: "binance", Symbol: "BTCUSDT", Weight: 100}},
			Smoothing: smoothing.Policy{Type: smoothing.TypeNone},
		},
	}
	calc, err := NewCalculator(indices, obs, testLogger(t))
	require.NoError(t, err)

	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 50000.0}
	obs <- Observation{FeedID: "binance-eth", Timestamp: time.Now(), Price: 3000.0}

	results := calc.CalculateIndices()
	require.Len(t, results, 2)
	assert.Equal(t, "ETH-USD-INDEX", results[0].Name)
	assert.Equal(t, "BTC-USD-INDEX", results[1].Name)
}

func TestCalculateLatestObservationWins(t *testing.T) {
	obs := make(chan Observation, 10)
	def := Definition{
		Name:      "BTC-USD-INDEX",
		Feeds:     []Feed{{ID: "binance-btc", Exchange: "binance", Symbol: "BTCUSDT", Weight: 100}},
		Smoothing: smoothing.Policy{Type: smoothing.TypeNone},
	}
	calc, err := NewCalculator([]Definition{def}, obs, testLogger(t))
	require.NoError(t, err)

	// All queued observations are drained in one cycle; the last overwrites.
	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 49000.0}
	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 51000.0}

	results := calc.CalculateIndices()
	require.Len(t, results, 1)
	assert.Equal(t, 51000.0, results[0].Value)

	// Both raw prices were recorded in the feed history.
	assert.Equal(t, []float64{51000.0, 49000.0}, calc.FeedHistory("binance-btc"))
}

func TestCalculateEMAUsesSmoothedHistory(t *testing.T) {
	obs := make(chan Observation, 10)
	def := Definition{
		Name:  "BTC-USD-INDEX",
		Feeds: []Feed{{ID: "binance-btc", Exchange: "binance", Symbol: "BTCUSDT", Weight: 100}},
		// alpha = 2/(1+9) = 0.2
		Smoothing: smoothing.Policy{Type: smoothing.TypeEMA, SampleCount: 9, SmoothingFactor: 2.0},
	}
	calc, err := NewCalculator([]Definition{def}, obs, testLogger(t))
	require.NoError(t, err)

	// Cold start: first cycle seeds the EMA with the raw value.
	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 100.0}
	results := calc.CalculateIndices()
	require.Len(t, results, 1)
	assert.Equal(t, 100.0, results[0].Value)

	// Second cycle blends against the previous smoothed value:
	// 110*0.2 + 100*0.8 = 102.
	obs <- Observation{FeedID: "binance-btc", Timestamp: time.Now(), Price: 110.0}
	results = calc.CalculateIndices()
	require.Len(t, results, 1)
	assert.InDelta(t, 102.0, results[0].Value, 1e-9)
}

func TestNewCalculatorRejectsUnknownSmoothing(t *testing.T) {
	obs := make(chan Observation)
	def := btcIndex(smoothing.Policy{Type: "median"})

	_, err := NewCalculator([]Definition{def}, obs, testLogger(t))
	assert.ErrorIs(t, err, smoothing.ErrUnknownType)
}
