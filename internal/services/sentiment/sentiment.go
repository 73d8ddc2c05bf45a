package sentiment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cryptoadvisor/internal/domain"
)

// QuoteProvider supplies market quotes for sentiment interpretation.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (AssetQuote, error)
}

// EventProvider supplies upcoming economic calendar events.
type EventProvider interface {
	FetchEvents(ctx context.Context) ([]CalendarEvent, error)
}

// Service combines quotes and calendar events into a single sentiment
// summary string for the agent context. Either source may be absent;
// failures degrade the summary instead of failing the analysis.
type Service struct {
	quotes QuoteProvider
	events EventProvider
	logger *zap.Logger
}

// NewService creates a sentiment service. quotes and events may be nil.
func NewService(quotes QuoteProvider, events EventProvider, logger *zap.Logger) *Service {
	return &Service{quotes: quotes, events: events, logger: logger}
}

// Summary builds the sentiment summary for one pair. Returns an empty string
// when no source produced anything.
func (s *Service) Summary(ctx context.Context, pair domain.Pair) string {
	var parts []string

	if s.quotes != nil {
		quote, err := s.quotes.GetQuote(ctx, pair.From)
		if err != nil {
			s.logger.Warn("failed to fetch market quote for sentiment",
				zap.String("symbol", pair.From), zap.Error(err))
		} else {
			parts = append(parts, fmt.Sprintf("%s market mood is %s (24h change %.2f%%, 24h volume change %.2f%%)",
				quote.Symbol, quote.Mood(), quote.PercentChange24h, quote.VolumeChange24h))
		}
	}

	if s.events != nil {
		events, err := s.events.FetchEvents(ctx)
		if err != nil {
			s.logger.Warn("failed to fetch calendar events for sentiment", zap.Error(err))
		} else if high := highImpact(events); len(high) > 0 {
			parts = append(parts, fmt.Sprintf("upcoming high-impact events: %s", strings.Join(high, "; ")))
		}
	}

	return strings.Join(parts, ". ")
}

func highImpact(events []CalendarEvent) []string {
	var out []string
	for _, e := range events {
		if strings.EqualFold(e.Impact, "high") {
			out = append(out, fmt.Sprintf("%s %s (%s)", e.Currency, e.Name, e.Time))
		}
	}
	return out
}
