package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	binanceBaseURL = "https://api.binance.com"
	binanceTimeout = 10 * time.Second
)

// Binance fetches spot prices from the Binance REST API.
type Binance struct {
	client  *http.Client
	baseURL string
}

var _ Exchange = (*Binance)(nil)

// BinanceTicker is the /api/v3/ticker/price response.
type BinanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// NewBinance creates a Binance exchange client.
func NewBinance() *Binance {
	return &Binance{
		client:  &http.Client{Timeout: binanceTimeout},
		baseURL: binanceBaseURL,
	}
}

// Name returns the exchange name.
func (b *Binance) Name() string {
	return "binance"
}

// FetchPrice fetches the current price for a symbol such as "BTCUSDT".
func (b *Binance) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var ticker BinanceTicker
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", ErrInvalidResponse, ticker.Price, err)
	}

	return price.InexactFloat64(), nil
}

func init() {
	Register("binance", func() Exchange {
		return NewBinance()
	})
}
