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
	coinbaseBaseURL = "https://api.coinbase.com"
	coinbaseTimeout = 10 * time.Second
)

// Coinbase fetches spot prices from the Coinbase REST API.
type Coinbase struct {
	client  *http.Client
	baseURL string
}

var _ Exchange = (*Coinbase)(nil)

// CoinbaseSpot is the /v2/prices/{pair}/spot response.
type CoinbaseSpot struct {
	Data struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// NewCoinbase creates a Coinbase exchange client.
func NewCoinbase() *Coinbase {
	return &Coinbase{
		client:  &http.Client{Timeout: coinbaseTimeout},
		baseURL: coinbaseBaseURL,
	}
}

// Name returns the exchange name.
func (c *Coinbase) Name() string {
	return "coinbase"
}

// FetchPrice fetches the current spot price for a symbol such as "BTC-USD".
func (c *Coinbase) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/v2/prices/%s/spot", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
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

	var spot CoinbaseSpot
	if err := json.Unmarshal(body, &spot); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	price, err := decimal.NewFromString(spot.Data.Amount)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrInvalidResponse, spot.Data.Amount, err)
	}

	return price.InexactFloat64(), nil
}

func init() {
	Register("coinbase", func() Exchange {
		return NewCoinbase()
	})
}
