// Package normalizer validates loosely-typed kline rows into a canonical
// ordered series. Everything downstream operates only on the strict type.
package normalizer

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"cryptoadvisor/internal/domain"
)

// Normalize converts raw candle records into a validated KlineSeries.
// Records are deduplicated by open time (first occurrence wins) and sorted
// ascending. A series shorter than minLookback cannot seed the configured
// indicators and is rejected with domain.ErrInsufficientData.
func Normalize(raw []domain.RawCandle, minLookback int) (domain.KlineSeries, error) {
	candles := make(domain.KlineSeries, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))

	for i, r := range raw {
		candle, err := validate(r)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}

		if _, ok := seen[r.OpenTime]; ok {
			continue
		}
		seen[r.OpenTime] = struct{}{}

		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	if len(candles) < minLookback {
		return nil, errors.Wrapf(domain.ErrInsufficientData,
			"need at least %d candles, got %d", minLookback, len(candles))
	}

	return candles, nil
}

func validate(r domain.RawCandle) (domain.Candle, error) {
	if r.OpenTime <= 0 {
		return domain.Candle{}, errors.Wrap(domain.ErrMalformedCandle, "missing open_time")
	}

	fields := []struct {
		name  string
		value string
	}{
		{"open", r.Open},
		{"high", r.High},
		{"low", r.Low},
		{"close", r.Close},
		{"volume", r.Volume},
	}

	parsed := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		if f.value == "" {
			return domain.Candle{}, errors.Wrapf(domain.ErrMalformedCandle, "missing field %s", f.name)
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return domain.Candle{}, errors.Wrapf(domain.ErrMalformedCandle, "non-numeric field %s: %s", f.name, f.value)
		}
		if d.IsNegative() {
			return domain.Candle{}, errors.Wrapf(domain.ErrMalformedCandle, "negative field %s: %s", f.name, f.value)
		}
		parsed[i] = d
	}

	return domain.Candle{
		OpenTime: time.UnixMilli(r.OpenTime).UTC(),
		Open:     parsed[0],
		High:     parsed[1],
		Low:      parsed[2],
		Close:    parsed[3],
		Volume:   parsed[4],
	}, nil
}
