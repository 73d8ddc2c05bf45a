package clients

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"

	"cryptoadvisor/internal/domain"
)

// BybitClient implements KlineProvider for the Bybit exchange.
type BybitClient struct {
	client *bybit.Client
}

// NewBybitClient creates a Bybit-backed kline provider.
func NewBybitClient(apiKey, apiSecret string) *BybitClient {
	return &BybitClient{client: bybit.NewClient().WithAuth(apiKey, apiSecret)}
}

// GetKlines fetches spot kline data from Bybit. Bybit returns rows newest
// first; ordering is left to the normalizer.
func (c *BybitClient) GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.RawCandle, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	bybitInterval, err := convertIntervalToBybit(interval)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid interval: %s", interval)
	}

	param := bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(pair.Symbol()),
		Interval: bybit.Interval(bybitInterval),
		Limit:    &limit,
	}

	var items []bybit.V5GetKlineItem
	operation := func() error {
		result, err := c.client.V5().Market().GetKline(param)
		if err != nil {
			return err
		}
		if result == nil {
			return errors.Errorf("empty result from Bybit API for %s", pair.String())
		}
		items = result.Result.List
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = klineFetchMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Bybit for %s", pair.String())
	}

	result := make([]domain.RawCandle, len(items))
	for i, k := range items {
		openTime, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse start time at index %d", i)
		}
		result[i] = domain.RawCandle{
			OpenTime: openTime,
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Volume:   k.Volume,
		}
	}

	return result, nil
}

// convertIntervalToBybit converts standard interval format ("1m", "1h", "1d")
// to the Bybit form ("1", "60", "D").
func convertIntervalToBybit(interval string) (string, error) {
	if len(interval) < 2 {
		return "", fmt.Errorf("invalid interval format: %s", interval)
	}

	unit := interval[len(interval)-1]
	numberPart := interval[:len(interval)-1]

	switch unit {
	case 'm':
		return numberPart, nil
	case 'h':
		n, err := strconv.ParseInt(numberPart, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid interval number: %s", interval)
		}
		return fmt.Sprintf("%d", n*60), nil
	case 'd':
		return "D", nil
	case 'w':
		return "W", nil
	default:
		return "", fmt.Errorf("unsupported interval unit: %c", unit)
	}
}
