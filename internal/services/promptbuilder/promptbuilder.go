// Package promptbuilder generates the prompts sent to the reasoning agent.
// It formats the assembled agent context and supporting market studies into a
// compact JSON-sectioned user prompt.
package promptbuilder

import (
	"encoding/json"
	"fmt"
	"strings"

	"cryptoadvisor/internal/domain"
)

// SystemPrompt global system instructions for the analyst LLM.
const SystemPrompt = `You are a financial analyst specialized in crypto assets. You receive a deterministic technical analysis (indicator snapshot and rule-based signal) together with market sentiment context, and you produce the final trading recommendation.

Treat the provided indicator values and signal as ground truth for market mechanics. Your job is contextual judgment: confirm, strengthen or veto the rule-based signal in light of sentiment, volume and trend context.

Respond with ONLY a single valid JSON object. No markdown, no code blocks, no text outside the object.

Required JSON structure:

{
  "action": "BUY|SELL|HOLD",
  "confidence": 0.0,
  "justification": "detailed explanation of your reasoning"
}

- action: one of "BUY", "SELL" or "HOLD"
- confidence: a number from 0 to 1 expressing confidence in the action
- justification: explain which data points drove your decision and why`

// PromptBuilder builds user prompts from analysis results.
type PromptBuilder struct{}

// NewPromptBuilder creates a new PromptBuilder instance.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildUserPrompt formats the agent context and market studies for the LLM.
func (b *PromptBuilder) BuildUserPrompt(agentCtx domain.AgentContext, volume domain.VolumeAnalysis, trend domain.TrendDirection) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following data and provide a trading recommendation.\n")

	writeSection(&sb, "Technical Analysis", agentCtx)
	writeSection(&sb, "Volume Analysis", volume)

	sb.WriteString(fmt.Sprintf("\n## Trend\n%s\n", trend))

	if agentCtx.SentimentSummary != "" {
		sb.WriteString(fmt.Sprintf("\n## Market Sentiment\n%s\n", agentCtx.SentimentSummary))
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, title string, payload any) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}
	sb.WriteString(fmt.Sprintf("\n## %s\n```json\n%s\n```\n", title, data))
}
