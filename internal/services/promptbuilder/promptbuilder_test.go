package promptbuilder

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cryptoadvisor/internal/domain"
)

func TestBuildUserPrompt_ContainsAllSections(t *testing.T) {
	agentCtx := domain.AgentContext{
		Asset:     "BTCUSDT",
		Timeframe: "1h",
		Signal: domain.Signal{
			Action:     domain.ActionBuy,
			Confidence: decimal.NewFromFloat(0.6),
			Reasons:    []string{"close at or below lower VWAP band"},
		},
		SentimentSummary: "BTC market mood is bullish",
	}
	volume := domain.VolumeAnalysis{
		CurrentVolume:  decimal.NewFromInt(30),
		AverageVolume:  decimal.NewFromInt(11),
		RelativeVolume: decimal.NewFromFloat(2.72),
		SpikeIndexes:   []int{24},
	}

	prompt := NewPromptBuilder().BuildUserPrompt(agentCtx, volume, domain.TrendDirectionBullish)

	require.Contains(t, prompt, "## Technical Analysis")
	require.Contains(t, prompt, "## Volume Analysis")
	require.Contains(t, prompt, "## Trend\nbullish")
	require.Contains(t, prompt, "## Market Sentiment")
	require.Contains(t, prompt, "BTCUSDT")
	require.Contains(t, prompt, `"action": "BUY"`)
}

func TestBuildUserPrompt_OmitsEmptySentiment(t *testing.T) {
	agentCtx := domain.AgentContext{
		Asset:     "ETHUSDT",
		Timeframe: "4h",
		Signal: domain.Signal{
			Action:  domain.ActionHold,
			Reasons: []string{"no decision condition met"},
		},
	}

	prompt := NewPromptBuilder().BuildUserPrompt(agentCtx, domain.VolumeAnalysis{}, domain.TrendDirectionNeutral)

	require.NotContains(t, prompt, "## Market Sentiment")
}

func TestSystemPrompt_EnforcesJSONContract(t *testing.T) {
	require.True(t, strings.Contains(SystemPrompt, `"action": "BUY|SELL|HOLD"`))
	require.Contains(t, SystemPrompt, "ONLY a single valid JSON object")
}
