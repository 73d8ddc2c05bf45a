// Package assembler merges the indicator snapshot, the engine signal and the
// external sentiment summary into the context handed to the reasoning agent.
// It is the last validation gate before handoff.
package assembler

import (
	"github.com/pkg/errors"

	"cryptoadvisor/internal/domain"
)

// Assemble builds the agent context. Every structural field is required;
// the sentiment summary is required only when sentimentRequired is set, an
// empty summary passes through otherwise.
func Assemble(pair domain.Pair, timeframe string, snapshot domain.IndicatorSnapshot,
	signal domain.Signal, sentimentSummary string, sentimentRequired bool) (domain.AgentContext, error) {

	if pair.From == "" || pair.To == "" {
		return domain.AgentContext{}, errors.Wrap(domain.ErrIncompleteContext, "missing pair")
	}
	if timeframe == "" {
		return domain.AgentContext{}, errors.Wrap(domain.ErrIncompleteContext, "missing timeframe")
	}
	if snapshot.AsOf.IsZero() {
		return domain.AgentContext{}, errors.Wrap(domain.ErrIncompleteContext, "missing indicator snapshot")
	}
	if len(signal.Reasons) == 0 {
		return domain.AgentContext{}, errors.Wrap(domain.ErrIncompleteContext, "signal carries no reasons")
	}
	if sentimentRequired && sentimentSummary == "" {
		return domain.AgentContext{}, errors.Wrap(domain.ErrIncompleteContext, "missing sentiment summary")
	}

	return domain.AgentContext{
		Asset:            pair.Symbol(),
		Timeframe:        timeframe,
		Indicators:       snapshot,
		Signal:           signal,
		SentimentSummary: sentimentSummary,
	}, nil
}
