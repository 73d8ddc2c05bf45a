package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorSnapshot indicator values as of one candle position.
// Recomputed per analysis request and never mutated after creation.
type IndicatorSnapshot struct {
	EMA       decimal.Decimal `json:"ema"`
	RSI       decimal.Decimal `json:"rsi"`
	VWAP      decimal.Decimal `json:"vwap"`
	VWAPUpper decimal.Decimal `json:"vwap_upper"`
	VWAPLower decimal.Decimal `json:"vwap_lower"`
	// Close is the close price of the candle the snapshot was taken at.
	Close decimal.Decimal `json:"close"`
	AsOf  time.Time       `json:"as_of"`
}
