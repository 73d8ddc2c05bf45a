package domain

import "github.com/shopspring/decimal"

// Signal outcome of one decision engine evaluation. Immutable value.
type Signal struct {
	Action Action `json:"action"`
	// Confidence normalized signal strength in [0, 1].
	Confidence decimal.Decimal `json:"confidence"`
	// Reasons lists, in evaluation order, every condition that contributed
	// to the outcome.
	Reasons []string `json:"reasons"`
}
