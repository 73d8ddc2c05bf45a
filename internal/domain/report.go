package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendDirection qualitative direction of price action.
type TrendDirection string

const (
	TrendDirectionBullish TrendDirection = "bullish"
	TrendDirectionBearish TrendDirection = "bearish"
	TrendDirectionNeutral TrendDirection = "neutral"
)

// VolumeAnalysis volume metrics for the analyzed series.
type VolumeAnalysis struct {
	CurrentVolume decimal.Decimal `json:"current_volume"`
	AverageVolume decimal.Decimal `json:"average_volume"`
	// RelativeVolume ratio of current to average volume.
	RelativeVolume decimal.Decimal `json:"relative_volume"`
	// SpikeIndexes candle positions where volume exceeded the spike threshold.
	SpikeIndexes []int `json:"spike_indexes"`
}

// AnalysisReport full outcome of one analysis request: the agent context plus
// supporting market studies and the optional reasoning agent verdict.
type AnalysisReport struct {
	ID             string          `json:"id"`
	Pair           string          `json:"pair"`
	Timeframe      string          `json:"timeframe"`
	Context        AgentContext    `json:"context"`
	Volume         VolumeAnalysis  `json:"volume"`
	Trend          TrendDirection  `json:"trend"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
