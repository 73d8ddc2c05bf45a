// Package sentiment produces the market sentiment summary attached to the
// agent context: a 24h market read from CoinMarketCap quotes plus upcoming
// high-impact events scraped from an economic calendar.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

const (
	cmcBaseURL     = "https://pro-api.coinmarketcap.com"
	cmcQuotesPath  = "/v2/cryptocurrency/quotes/latest"
	cmcHTTPTimeout = 20 * time.Second
	cmcMaxElapsed  = 30 * time.Second
)

// AssetQuote market data for one asset as reported by CoinMarketCap.
type AssetQuote struct {
	Symbol           string
	PriceUSD         float64
	PercentChange24h float64
	VolumeChange24h  float64
}

// Mood interprets the 24h price change as a market mood.
func (q AssetQuote) Mood() string {
	switch {
	case q.PercentChange24h >= 2:
		return "bullish"
	case q.PercentChange24h <= -2:
		return "bearish"
	default:
		return "neutral"
	}
}

// CMCClient fetches asset quotes from the CoinMarketCap v2 API.
type CMCClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewCMCClient creates a CoinMarketCap client.
func NewCMCClient(apiKey string) *CMCClient {
	return &CMCClient{
		apiKey:  apiKey,
		baseURL: cmcBaseURL,
		httpClient: &http.Client{
			Timeout: cmcHTTPTimeout,
		},
	}
}

type cmcQuotesResponse struct {
	Data map[string][]struct {
		Symbol string `json:"symbol"`
		Quote  map[string]struct {
			Price            float64 `json:"price"`
			PercentChange24h float64 `json:"percent_change_24h"`
			VolumeChange24h  float64 `json:"volume_change_24h"`
		} `json:"quote"`
	} `json:"data"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// GetQuote fetches the latest quote for an asset symbol (e.g. "BTC").
func (c *CMCClient) GetQuote(ctx context.Context, symbol string) (AssetQuote, error) {
	if c.apiKey == "" {
		return AssetQuote{}, errors.New("CoinMarketCap API key is empty")
	}

	endpoint := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, cmcQuotesPath, url.QueryEscape(symbol))

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accepts", "application/json")
		req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("CoinMarketCap API returned status %d: %s", resp.StatusCode, body)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = cmcMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return AssetQuote{}, errors.Wrapf(err, "failed to fetch quote for %s", symbol)
	}

	var parsed cmcQuotesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AssetQuote{}, errors.Wrap(err, "unmarshal CoinMarketCap response")
	}
	if parsed.Status.ErrorCode != 0 {
		return AssetQuote{}, errors.Errorf("CoinMarketCap API error: %s", parsed.Status.ErrorMessage)
	}

	assets, ok := parsed.Data[symbol]
	if !ok || len(assets) == 0 {
		return AssetQuote{}, errors.Errorf("asset %s not found in CoinMarketCap response", symbol)
	}

	quote, ok := assets[0].Quote["USD"]
	if !ok {
		return AssetQuote{}, errors.Errorf("no USD quote for %s", symbol)
	}

	return AssetQuote{
		Symbol:           symbol,
		PriceUSD:         quote.Price,
		PercentChange24h: quote.PercentChange24h,
		VolumeChange24h:  quote.VolumeChange24h,
	}, nil
}
