package domain

// Action represents the discrete trading recommendation.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// action string constants to avoid magic strings
const (
	actionStringBuy  = "BUY"
	actionStringSell = "SELL"
	actionStringHold = "HOLD"
)

// isValidActionString checks if the string is a valid action
func isValidActionString(s string) bool {
	switch s {
	case actionStringBuy, actionStringSell, actionStringHold:
		return true
	}
	return false
}

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return actionStringBuy
	case ActionSell:
		return actionStringSell
	case ActionHold:
		return actionStringHold
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the action as its string form.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}
