package domain

import "github.com/pkg/errors"

// Error kinds returned by the analysis pipeline. Callers match them with
// errors.Is; wrapped variants carry the offending field or position.
var (
	// ErrMalformedCandle a raw candle record fails shape or type validation.
	ErrMalformedCandle = errors.New("malformed candle")

	// ErrInsufficientData the series is shorter than the required lookback,
	// or cumulative volume is zero where VWAP is requested.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrIncompleteContext the assembler is missing a required field.
	ErrIncompleteContext = errors.New("incomplete context")
)
