package indicators

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cryptoadvisor/internal/domain"
)

func candle(at time.Time, price, volume float64) domain.Candle {
	p := decimal.NewFromFloat(price)
	return domain.Candle{
		OpenTime: at,
		Open:     p,
		High:     p,
		Low:      p,
		Close:    p,
		Volume:   decimal.NewFromFloat(volume),
	}
}

func seriesFromCloses(closes ...float64) domain.KlineSeries {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.KlineSeries, len(closes))
	for i, c := range closes {
		series[i] = candle(start.Add(time.Duration(i)*time.Hour), c, 1)
	}
	return series
}

func TestEMA_SeededWithSimpleAverage(t *testing.T) {
	series := seriesFromCloses(1, 2, 3, 4, 5)

	values, err := EMA(series, 3)
	require.NoError(t, err)
	require.Len(t, values, 3)

	// seed = (1+2+3)/3 = 2, k = 0.5
	require.InDelta(t, 2.0, values[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 3.0, values[1].InexactFloat64(), 1e-9) // 4*0.5 + 2*0.5
	require.InDelta(t, 4.0, values[2].InexactFloat64(), 1e-9) // 5*0.5 + 3*0.5
}

func TestEMA_InsufficientData(t *testing.T) {
	series := seriesFromCloses(1, 2)

	_, err := EMA(series, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestEMA_TracksMonotonicTrend(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	series := seriesFromCloses(closes...)

	values, err := EMA(series, 5)
	require.NoError(t, err)

	for i := 1; i < len(values); i++ {
		require.True(t, values[i].GreaterThan(values[i-1]),
			"EMA must rise with a monotonically rising series")
	}
	// EMA lags the latest close in an uptrend
	last, _ := series.Last()
	require.True(t, values[len(values)-1].LessThan(last.Close))
}

func TestRSI_FlatMarketIsExactlyFifty(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	series := seriesFromCloses(closes...)

	values, err := RSI(series, 14)
	require.NoError(t, err)
	require.NotEmpty(t, values)

	for _, v := range values {
		require.True(t, v.Equal(decimal.NewFromInt(50)), "flat market RSI must be exactly 50, got %s", v)
	}
}

func TestRSI_AllGainsIsHundred(t *testing.T) {
	series := seriesFromCloses(1, 2, 3, 4, 5, 6, 7, 8)

	values, err := RSI(series, 5)
	require.NoError(t, err)
	for _, v := range values {
		require.True(t, v.Equal(decimal.NewFromInt(100)), "gain-only RSI must be 100, got %s", v)
	}
}

func TestRSI_WilderSmoothing(t *testing.T) {
	// deltas: +1, +1, -1; seed over first 2: avgGain=1, avgLoss=0 -> 100
	// next: avgGain=(1*1+0)/2=0.5, avgLoss=(0*1+1)/2=0.5 -> RS=1 -> 50
	series := seriesFromCloses(1, 2, 3, 2)

	values, err := RSI(series, 2)
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.InDelta(t, 100.0, values[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 50.0, values[1].InexactFloat64(), 1e-9)
}

func TestRSI_WithinBounds(t *testing.T) {
	series := seriesFromCloses(10, 12, 11, 15, 14, 13, 17, 16, 18, 15, 14, 19, 20, 18, 17)

	values, err := RSI(series, 5)
	require.NoError(t, err)
	for _, v := range values {
		require.True(t, v.GreaterThanOrEqual(decimal.Zero))
		require.True(t, v.LessThanOrEqual(decimal.NewFromInt(100)))
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	series := seriesFromCloses(1, 2, 3)

	_, err := RSI(series, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestVWAP_WindowedValues(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := domain.KlineSeries{
		candle(start, 10, 1),
		candle(start.Add(time.Hour), 20, 1),
		candle(start.Add(2*time.Hour), 30, 3),
	}
	params := domain.IndicatorParams{
		EMAPeriod:      2,
		RSIPeriod:      2,
		VWAPWindow:     2,
		BandMultiplier: decimal.NewFromInt(2),
	}

	vwap, upper, lower, err := VWAP(series, params)
	require.NoError(t, err)
	require.Len(t, vwap, 2)

	// window [10(v1), 20(v1)]: vwap 15, stddev of (tp-vwap) = 5, bands 15 +/- 10
	require.InDelta(t, 15.0, vwap[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 25.0, upper[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 5.0, lower[0].InexactFloat64(), 1e-9)

	// window [20(v1), 30(v3)]: vwap (20+90)/4 = 27.5
	require.InDelta(t, 27.5, vwap[1].InexactFloat64(), 1e-9)
}

func TestVWAP_BandMultiplierScalesWidth(t *testing.T) {
	series := seriesFromCloses(10, 20, 30, 40)

	narrow := domain.IndicatorParams{EMAPeriod: 2, RSIPeriod: 2, VWAPWindow: 3, BandMultiplier: decimal.NewFromInt(1)}
	wide := domain.IndicatorParams{EMAPeriod: 2, RSIPeriod: 2, VWAPWindow: 3, BandMultiplier: decimal.NewFromInt(3)}

	vwapN, upperN, lowerN, err := VWAP(series, narrow)
	require.NoError(t, err)
	vwapW, upperW, lowerW, err := VWAP(series, wide)
	require.NoError(t, err)

	for i := range vwapN {
		require.True(t, vwapN[i].Equal(vwapW[i]), "multiplier must not move VWAP itself")

		widthN := upperN[i].Sub(lowerN[i])
		widthW := upperW[i].Sub(lowerW[i])
		require.InDelta(t, 3.0, widthW.Div(widthN).InexactFloat64(), 1e-9)
	}
}

func TestVWAP_ZeroVolumeReported(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := domain.KlineSeries{
		candle(start, 10, 0),
		candle(start.Add(time.Hour), 20, 0),
	}
	params := domain.IndicatorParams{EMAPeriod: 2, RSIPeriod: 2, VWAPWindow: 2, BandMultiplier: decimal.NewFromInt(2)}

	_, _, _, err := VWAP(series, params)
	require.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestVWAP_SessionResetsAtDayBoundary(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	series := domain.KlineSeries{
		candle(day1, 10, 1),
		candle(day1.Add(time.Hour), 20, 1),
		candle(day2, 50, 1),
	}
	params := domain.IndicatorParams{
		EMAPeriod:      2,
		RSIPeriod:      2,
		SessionVWAP:    true,
		BandMultiplier: decimal.NewFromInt(2),
	}

	vwap, _, _, err := VWAP(series, params)
	require.NoError(t, err)
	require.Len(t, vwap, 3)

	require.InDelta(t, 10.0, vwap[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 15.0, vwap[1].InexactFloat64(), 1e-9)
	// new UTC day: accumulation starts over
	require.InDelta(t, 50.0, vwap[2].InexactFloat64(), 1e-9)
}

func TestSnapshot_LatestAndPrevious(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	series := seriesFromCloses(closes...)
	params := domain.IndicatorParams{EMAPeriod: 9, RSIPeriod: 14, VWAPWindow: 14, BandMultiplier: decimal.NewFromInt(2)}

	snapshot, prev, err := Snapshot(series, params)
	require.NoError(t, err)
	require.NotNil(t, prev)

	last, _ := series.Last()
	require.True(t, snapshot.AsOf.Equal(last.OpenTime))
	require.True(t, snapshot.Close.Equal(last.Close))
	require.True(t, prev.AsOf.Before(snapshot.AsOf))

	require.True(t, snapshot.RSI.GreaterThanOrEqual(decimal.Zero))
	require.True(t, snapshot.RSI.LessThanOrEqual(decimal.NewFromInt(100)))
	require.True(t, snapshot.VWAPUpper.GreaterThanOrEqual(snapshot.VWAP))
	require.True(t, snapshot.VWAPLower.LessThanOrEqual(snapshot.VWAP))
}

func TestSnapshot_NoPreviousAtMinimumLength(t *testing.T) {
	series := seriesFromCloses(1, 2, 3, 4)
	params := domain.IndicatorParams{EMAPeriod: 3, RSIPeriod: 3, VWAPWindow: 3, BandMultiplier: decimal.NewFromInt(2)}

	snapshot, prev, err := Snapshot(series, params)
	require.NoError(t, err)
	require.Nil(t, prev)
	require.False(t, snapshot.AsOf.IsZero())
}

func TestSnapshot_Deterministic(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + float64((i*13)%11)
	}
	series := seriesFromCloses(closes...)
	params := domain.IndicatorParams{EMAPeriod: 9, RSIPeriod: 14, VWAPWindow: 14, BandMultiplier: decimal.NewFromInt(2)}

	first, firstPrev, err := Snapshot(series, params)
	require.NoError(t, err)
	second, secondPrev, err := Snapshot(series, params)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, firstPrev, secondPrev)
}
