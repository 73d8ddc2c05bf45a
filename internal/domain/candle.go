package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawCandle one kline row as delivered by an exchange API: millisecond
// timestamp plus string-typed prices and volume. Exchanges (Binance, Bybit)
// return all numeric fields as strings, so validation and conversion happen
// at the normalizer boundary rather than in the transport clients.
type RawCandle struct {
	OpenTime int64  `json:"open_time"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// Candle single validated OHLCV candlestick.
type Candle struct {
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// TypicalPrice returns (high + low + close) / 3.
func (c Candle) TypicalPrice() decimal.Decimal {
	return c.High.Add(c.Low).Add(c.Close).Div(decimal.NewFromInt(3))
}

// KlineSeries chronologically ordered candle sequence for one pair and
// timeframe. Produced by the normalizer and treated as immutable afterwards.
type KlineSeries []Candle

// Closes returns the close price of every candle in order.
func (s KlineSeries) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent candle.
func (s KlineSeries) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Equal reports element-wise equality of two series.
func (s KlineSeries) Equal(other KlineSeries) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].OpenTime.Equal(other[i].OpenTime) ||
			!s[i].Open.Equal(other[i].Open) ||
			!s[i].High.Equal(other[i].High) ||
			!s[i].Low.Equal(other[i].Low) ||
			!s[i].Close.Equal(other[i].Close) ||
			!s[i].Volume.Equal(other[i].Volume) {
			return false
		}
	}
	return true
}
