// Package indicators computes EMA, RSI, VWAP and VWAP bands over a normalized
// kline series. Every function is deterministic and side-effect free: the same
// series and params always produce the same values. Each function returns one
// value per candle position from the point the indicator is seeded, so the
// warmup offset is len(series) - len(values).
package indicators

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"cryptoadvisor/internal/domain"
)

// EMA computes the exponential moving average. The value at the seed position
// is the simple average of the first period closes; every later value follows
// close*k + prev*(1-k) with k = 2/(period+1).
func EMA(series domain.KlineSeries, period int) ([]decimal.Decimal, error) {
	if len(series) < period {
		return nil, errors.Wrapf(domain.ErrInsufficientData,
			"EMA(%d) needs %d candles, got %d", period, period, len(series))
	}

	closes := closesToFloat(series)

	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)

	values := make([]float64, 0, len(closes)-period+1)
	values = append(values, seed)

	prev := seed
	for _, c := range closes[period:] {
		prev = c*k + prev*(1-k)
		values = append(values, prev)
	}

	return floatsToDecimals(values), nil
}

// RSI computes the relative strength index with Wilder smoothing. The seed
// average gain/loss is the simple mean of the first period deltas; later
// averages follow (prev*(period-1) + value) / period. A flat market (zero
// average gain and loss) yields exactly 50, zero average loss with positive
// gain yields 100.
func RSI(series domain.KlineSeries, period int) ([]decimal.Decimal, error) {
	if len(series) < period+1 {
		return nil, errors.Wrapf(domain.ErrInsufficientData,
			"RSI(%d) needs %d candles, got %d", period, period+1, len(series))
	}

	closes := closesToFloat(series)

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	values := make([]float64, 0, len(closes)-period)
	values = append(values, rsiValue(avgGain, avgLoss))

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		values = append(values, rsiValue(avgGain, avgLoss))
	}

	return floatsToDecimals(values), nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			// flat market, the sole documented default
			return 50
		}
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// VWAP computes the volume-weighted average price and its bands. In windowed
// mode accumulation covers the trailing VWAPWindow candles; in session mode it
// resets at every UTC day boundary. Bands sit band_multiplier population
// stddevs of (typical price - VWAP) away from VWAP. Zero cumulative volume at
// any computed position is reported as domain.ErrInsufficientData, never
// silently defaulted.
func VWAP(series domain.KlineSeries, params domain.IndicatorParams) (vwap, upper, lower []decimal.Decimal, err error) {
	if params.SessionVWAP {
		return sessionVWAP(series, params.BandMultiplier)
	}
	return windowedVWAP(series, params.VWAPWindow, params.BandMultiplier)
}

func windowedVWAP(series domain.KlineSeries, window int, multiplier decimal.Decimal) (vwap, upper, lower []decimal.Decimal, err error) {
	if len(series) < window {
		return nil, nil, nil, errors.Wrapf(domain.ErrInsufficientData,
			"VWAP(%d) needs %d candles, got %d", window, window, len(series))
	}

	tps := make([]float64, len(series))
	vols := make([]float64, len(series))
	for i, c := range series {
		tps[i] = c.TypicalPrice().InexactFloat64()
		vols[i] = c.Volume.InexactFloat64()
	}

	mult := multiplier.InexactFloat64()

	n := len(series) - window + 1
	vwapF := make([]float64, 0, n)
	upperF := make([]float64, 0, n)
	lowerF := make([]float64, 0, n)

	for end := window; end <= len(series); end++ {
		start := end - window
		v, u, l, err := accumulate(tps[start:end], vols[start:end], mult)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "window ending at candle %d", end-1)
		}
		vwapF = append(vwapF, v)
		upperF = append(upperF, u)
		lowerF = append(lowerF, l)
	}

	return floatsToDecimals(vwapF), floatsToDecimals(upperF), floatsToDecimals(lowerF), nil
}

func sessionVWAP(series domain.KlineSeries, multiplier decimal.Decimal) (vwap, upper, lower []decimal.Decimal, err error) {
	if len(series) == 0 {
		return nil, nil, nil, errors.Wrap(domain.ErrInsufficientData, "empty series for session VWAP")
	}

	tps := make([]float64, len(series))
	vols := make([]float64, len(series))
	for i, c := range series {
		tps[i] = c.TypicalPrice().InexactFloat64()
		vols[i] = c.Volume.InexactFloat64()
	}

	mult := multiplier.InexactFloat64()

	vwapF := make([]float64, 0, len(series))
	upperF := make([]float64, 0, len(series))
	lowerF := make([]float64, 0, len(series))

	sessionStart := 0
	for i := range series {
		if i > 0 && !sameUTCDay(series[i-1].OpenTime, series[i].OpenTime) {
			sessionStart = i
		}
		v, u, l, err := accumulate(tps[sessionStart:i+1], vols[sessionStart:i+1], mult)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "session value at candle %d", i)
		}
		vwapF = append(vwapF, v)
		upperF = append(upperF, u)
		lowerF = append(lowerF, l)
	}

	return floatsToDecimals(vwapF), floatsToDecimals(upperF), floatsToDecimals(lowerF), nil
}

// accumulate computes one VWAP value and its bands over a single window.
func accumulate(tps, vols []float64, multiplier float64) (vwap, upper, lower float64, err error) {
	var cumTPV, cumVol float64
	for i := range tps {
		cumTPV += tps[i] * vols[i]
		cumVol += vols[i]
	}

	if cumVol == 0 {
		return 0, 0, 0, errors.Wrap(domain.ErrInsufficientData, "zero cumulative volume")
	}

	vwap = cumTPV / cumVol

	var variance float64
	for _, tp := range tps {
		d := tp - vwap
		variance += d * d
	}
	variance /= float64(len(tps))
	stddev := math.Sqrt(variance)

	return vwap, vwap + multiplier*stddev, vwap - multiplier*stddev, nil
}

// Snapshot computes the indicator snapshot for the latest candle and, when the
// series is long enough, for the one before it. The previous snapshot feeds
// crossover detection in the decision engine and is nil on the first call for
// a short series.
func Snapshot(series domain.KlineSeries, params domain.IndicatorParams) (domain.IndicatorSnapshot, *domain.IndicatorSnapshot, error) {
	if err := params.Validate(); err != nil {
		return domain.IndicatorSnapshot{}, nil, errors.Wrap(err, "invalid indicator params")
	}

	ema, err := EMA(series, params.EMAPeriod)
	if err != nil {
		return domain.IndicatorSnapshot{}, nil, err
	}
	rsi, err := RSI(series, params.RSIPeriod)
	if err != nil {
		return domain.IndicatorSnapshot{}, nil, err
	}
	vwap, upper, lower, err := VWAP(series, params)
	if err != nil {
		return domain.IndicatorSnapshot{}, nil, err
	}

	latest, ok := snapshotAt(series, len(series)-1, ema, rsi, vwap, upper, lower)
	if !ok {
		return domain.IndicatorSnapshot{}, nil, errors.Wrap(domain.ErrInsufficientData,
			"no indicator values for the latest candle")
	}

	prev, ok := snapshotAt(series, len(series)-2, ema, rsi, vwap, upper, lower)
	if !ok {
		return latest, nil, nil
	}

	return latest, &prev, nil
}

func snapshotAt(series domain.KlineSeries, idx int, ema, rsi, vwap, upper, lower []decimal.Decimal) (domain.IndicatorSnapshot, bool) {
	if idx < 0 {
		return domain.IndicatorSnapshot{}, false
	}

	emaIdx := idx - (len(series) - len(ema))
	rsiIdx := idx - (len(series) - len(rsi))
	vwapIdx := idx - (len(series) - len(vwap))
	if emaIdx < 0 || rsiIdx < 0 || vwapIdx < 0 {
		return domain.IndicatorSnapshot{}, false
	}

	return domain.IndicatorSnapshot{
		EMA:       ema[emaIdx],
		RSI:       rsi[rsiIdx],
		VWAP:      vwap[vwapIdx],
		VWAPUpper: upper[vwapIdx],
		VWAPLower: lower[vwapIdx],
		Close:     series[idx].Close,
		AsOf:      series[idx].OpenTime,
	}, true
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func closesToFloat(series domain.KlineSeries) []float64 {
	closes := make([]float64, len(series))
	for i, c := range series {
		closes[i] = c.Close.InexactFloat64()
	}
	return closes
}

func floatsToDecimals(values []float64) []decimal.Decimal {
	result := make([]decimal.Decimal, len(values))
	for i, v := range values {
		result[i] = decimal.NewFromFloat(v)
	}
	return result
}
