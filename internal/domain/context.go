package domain

// AgentContext structured market context handed to the reasoning agent.
// Assembled fresh per analysis request and not retained after handoff.
type AgentContext struct {
	Asset            string            `json:"asset"`
	Timeframe        string            `json:"timeframe"`
	Indicators       IndicatorSnapshot `json:"indicators"`
	Signal           Signal            `json:"signal"`
	SentimentSummary string            `json:"sentiment_summary,omitempty"`
}
