// Package clients contains the outward-facing collaborators: exchange kline
// providers and the LLM reasoning agent client.
package clients

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"cryptoadvisor/internal/domain"
)

const klineFetchMaxElapsed = 30 * time.Second

// KlineProvider defines the interface for fetching kline (candlestick) data.
// Providers hand back raw string-typed rows; validation belongs to the
// normalizer.
type KlineProvider interface {
	// GetKlines fetches up to limit klines for a trading pair at the given
	// interval (e.g. "1m", "5m", "1h", "4h").
	GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.RawCandle, error)
}

// BinanceClient implements KlineProvider for the Binance exchange.
type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient creates a Binance-backed kline provider.
func NewBinanceClient(apiKey, apiSecret string) *BinanceClient {
	return &BinanceClient{client: binance.NewClient(apiKey, apiSecret)}
}

// GetKlines fetches kline data from Binance with exponential backoff.
func (c *BinanceClient) GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.RawCandle, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	var klines []*binance.Kline
	operation := func() error {
		var err error
		klines, err = c.client.NewKlinesService().
			Symbol(pair.Symbol()).
			Interval(interval).
			Limit(limit).
			Do(ctx)
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = klineFetchMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", pair.String())
	}

	result := make([]domain.RawCandle, len(klines))
	for i, k := range klines {
		result[i] = domain.RawCandle{
			OpenTime: k.OpenTime,
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Volume:   k.Volume,
		}
	}

	return result, nil
}
