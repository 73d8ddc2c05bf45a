package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// IndicatorParams indicator configuration for one strategy instance.
// Supplied once and read-only afterwards.
type IndicatorParams struct {
	// EMAPeriod period of the exponential moving average.
	EMAPeriod int
	// RSIPeriod period of the relative strength index.
	RSIPeriod int
	// VWAPWindow trailing window size for VWAP. Ignored when SessionVWAP is set.
	VWAPWindow int
	// SessionVWAP accumulates VWAP from the start of the UTC trading day
	// instead of over a fixed trailing window.
	SessionVWAP bool
	// BandMultiplier stddev multiplier for the VWAP bands.
	BandMultiplier decimal.Decimal
}

// DefaultIndicatorParams returns the stock configuration: RSI 14, EMA 9,
// VWAP over a trailing 14-candle window with 2.0 stddev bands.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		EMAPeriod:      9,
		RSIPeriod:      14,
		VWAPWindow:     14,
		BandMultiplier: decimal.NewFromInt(2),
	}
}

// Validate validates the parameters.
func (p IndicatorParams) Validate() error {
	if p.EMAPeriod <= 0 {
		return errors.Errorf("ema_period must be > 0, got %d", p.EMAPeriod)
	}
	if p.RSIPeriod <= 0 {
		return errors.Errorf("rsi_period must be > 0, got %d", p.RSIPeriod)
	}
	if !p.SessionVWAP && p.VWAPWindow <= 0 {
		return errors.Errorf("vwap_window must be > 0, got %d", p.VWAPWindow)
	}
	if !p.BandMultiplier.IsPositive() {
		return errors.Errorf("band_multiplier must be > 0, got %s", p.BandMultiplier)
	}
	return nil
}

// MaxLookback returns the largest number of candles any configured indicator
// needs before it can produce its first value. RSI consumes one extra candle
// for the initial delta.
func (p IndicatorParams) MaxLookback() int {
	lookback := p.EMAPeriod
	if p.RSIPeriod+1 > lookback {
		lookback = p.RSIPeriod + 1
	}
	if !p.SessionVWAP && p.VWAPWindow > lookback {
		lookback = p.VWAPWindow
	}
	return lookback
}
