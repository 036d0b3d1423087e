package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ex, err := Create("binance")
	require.NoError(t, err)
	assert.Equal(t, "binance", ex.Name())

	ex, err = Create("coinbase")
	require.NoError(t, err)
	assert.Equal(t, "coinbase", ex.Name())

	_, err = Create("kraken")
	assert.ErrorIs(t, err, ErrUnknownExchange)
}

func TestBinanceFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.12"}`))
	}))
	defer server.Close()

	b := NewBinance()
	b.baseURL = server.URL

	price, err := b.FetchPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 50000.12, price, 1e-9)
}

func TestBinanceFetchPriceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "", ErrUnexpectedStatus},
		{"rate limited", http.StatusTooManyRequests, "", ErrUnexpectedStatus},
		{"malformed body", http.StatusOK, `{"price":`, ErrInvalidResponse},
		{"non-numeric price", http.StatusOK, `{"symbol":"BTCUSDT","price":"n/a"}`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			b := NewBinance()
			b.baseURL = server.URL

			_, err := b.FetchPrice(context.Background(), "BTCUSDT")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCoinbaseFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/BTC-USD/spot", r.URL.Path)
		w.Write([]byte(`{"data":{"amount":"50100.5","currency":"USD"}}`))
	}))
	defer server.Close()

	c := NewCoinbase()
	c.baseURL = server.URL

	price, err := c.FetchPrice(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.InDelta(t, 50100.5, price, 1e-9)
}

func TestCoinbaseFetchPriceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewCoinbase()
	c.baseURL = server.URL

	_, err := c.FetchPrice(context.Background(), "BTC-USD")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
