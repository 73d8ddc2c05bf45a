package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Recommendation reasoning agent's final verdict on top of the engine signal.
type Recommendation struct {
	Action        string  `json:"action"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// NewRecommendation builds a validated recommendation from a raw LLM response.
func NewRecommendation(raw string) (*Recommendation, error) {
	response := sanitizeRecommendationPayload(raw)

	if !json.Valid([]byte(response)) {
		return nil, errors.New("invalid JSON structure")
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(response), &rec); err != nil {
		return nil, errors.Wrap(err, "JSON unmarshal error")
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return &rec, nil
}

func sanitizeRecommendationPayload(raw string) string {
	response := strings.TrimSpace(raw)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// Validate validates the recommendation.
func (r *Recommendation) Validate() error {
	if r.Action == "" {
		return errors.New("action field is required")
	}
	if !isValidActionString(r.Action) {
		return fmt.Errorf("invalid action: %s", r.Action)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("invalid confidence: %f (must be 0.0-1.0)", r.Confidence)
	}
	if r.Justification == "" {
		return errors.New("justification field is required")
	}
	return nil
}

// ToAction converts the recommendation action string to a typed Action.
func (r *Recommendation) ToAction() Action {
	switch r.Action {
	case actionStringBuy:
		return ActionBuy
	case actionStringSell:
		return ActionSell
	default:
		return ActionHold
	}
}
