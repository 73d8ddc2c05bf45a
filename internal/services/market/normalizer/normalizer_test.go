package normalizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cryptoadvisor/internal/domain"
)

func raw(openTime int64, price, volume string) domain.RawCandle {
	return domain.RawCandle{
		OpenTime: openTime,
		Open:     price,
		High:     price,
		Low:      price,
		Close:    price,
		Volume:   volume,
	}
}

func TestNormalize_SortsAscending(t *testing.T) {
	records := []domain.RawCandle{
		raw(3000, "102", "1"),
		raw(1000, "100", "1"),
		raw(2000, "101", "1"),
	}

	series, err := Normalize(records, 3)
	require.NoError(t, err)
	require.Len(t, series, 3)
	require.True(t, series[0].OpenTime.Before(series[1].OpenTime))
	require.True(t, series[1].OpenTime.Before(series[2].OpenTime))
	require.Equal(t, "100", series[0].Close.String())
	require.Equal(t, "102", series[2].Close.String())
}

func TestNormalize_DeduplicatesKeepingFirst(t *testing.T) {
	records := []domain.RawCandle{
		raw(1000, "100", "1"),
		raw(2000, "101", "1"),
		raw(2000, "999", "1"), // duplicate open time, must lose
	}

	series, err := Normalize(records, 2)
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "101", series[1].Close.String())
}

func TestNormalize_MalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record domain.RawCandle
	}{
		{"missing open_time", domain.RawCandle{Open: "1", High: "1", Low: "1", Close: "1", Volume: "1"}},
		{"missing close", domain.RawCandle{OpenTime: 1000, Open: "1", High: "1", Low: "1", Volume: "1"}},
		{"non-numeric volume", raw(1000, "100", "abc")},
		{"negative price", raw(1000, "-5", "1")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize([]domain.RawCandle{tc.record}, 1)
			require.Error(t, err)
			require.ErrorIs(t, err, domain.ErrMalformedCandle)
		})
	}
}

func TestNormalize_InsufficientData(t *testing.T) {
	records := []domain.RawCandle{
		raw(1000, "100", "1"),
		raw(2000, "101", "1"),
	}

	_, err := Normalize(records, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestNormalize_InsufficientAfterDedup(t *testing.T) {
	records := []domain.RawCandle{
		raw(1000, "100", "1"),
		raw(1000, "100", "1"),
		raw(1000, "100", "1"),
	}

	_, err := Normalize(records, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestNormalize_Idempotent(t *testing.T) {
	records := []domain.RawCandle{
		raw(2000, "101", "2"),
		raw(1000, "100.5", "1.5"),
		raw(3000, "99.9", "0"),
	}

	first, err := Normalize(records, 3)
	require.NoError(t, err)
	second, err := Normalize(records, 3)
	require.NoError(t, err)

	require.True(t, first.Equal(second))
}
