package sentiment

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptoadvisor/internal/domain"
)

type fakeQuotes struct {
	quote AssetQuote
	err   error
}

func (f *fakeQuotes) GetQuote(context.Context, string) (AssetQuote, error) {
	return f.quote, f.err
}

type fakeEvents struct {
	events []CalendarEvent
	err    error
}

func (f *fakeEvents) FetchEvents(context.Context) ([]CalendarEvent, error) {
	return f.events, f.err
}

var testPair = domain.Pair{From: "BTC", To: "USDT"}

func TestSummary_CombinesQuoteAndEvents(t *testing.T) {
	quotes := &fakeQuotes{quote: AssetQuote{
		Symbol:           "BTC",
		PriceUSD:         65000,
		PercentChange24h: 3.4,
		VolumeChange24h:  12.1,
	}}
	events := &fakeEvents{events: []CalendarEvent{
		{Time: "14:30", Currency: "USD", Name: "CPI", Impact: "High"},
		{Time: "16:00", Currency: "EUR", Name: "Retail Sales", Impact: "Low"},
	}}

	svc := NewService(quotes, events, zap.NewNop())
	summary := svc.Summary(context.Background(), testPair)

	require.Contains(t, summary, "BTC market mood is bullish")
	require.Contains(t, summary, "USD CPI (14:30)")
	require.NotContains(t, summary, "Retail Sales")
}

func TestSummary_QuoteFailureDegrades(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("rate limited")}
	events := &fakeEvents{events: []CalendarEvent{
		{Time: "14:30", Currency: "USD", Name: "NFP", Impact: "high"},
	}}

	svc := NewService(quotes, events, zap.NewNop())
	summary := svc.Summary(context.Background(), testPair)

	require.NotContains(t, summary, "market mood")
	require.Contains(t, summary, "NFP")
}

func TestSummary_EventsFailureDegrades(t *testing.T) {
	quotes := &fakeQuotes{quote: AssetQuote{Symbol: "BTC", PercentChange24h: -5}}
	events := &fakeEvents{err: errors.New("scrape failed")}

	svc := NewService(quotes, events, zap.NewNop())
	summary := svc.Summary(context.Background(), testPair)

	require.Contains(t, summary, "bearish")
	require.NotContains(t, summary, "events")
}

func TestSummary_NoSourcesYieldsEmpty(t *testing.T) {
	svc := NewService(nil, nil, zap.NewNop())
	require.Empty(t, svc.Summary(context.Background(), testPair))
}

func TestSummary_OnlyLowImpactEventsYieldsNoEventPart(t *testing.T) {
	events := &fakeEvents{events: []CalendarEvent{
		{Time: "10:00", Currency: "GBP", Name: "Housing Starts", Impact: "medium"},
	}}

	svc := NewService(nil, events, zap.NewNop())
	require.Empty(t, svc.Summary(context.Background(), testPair))
}

func TestAssetQuote_Mood(t *testing.T) {
	require.Equal(t, "bullish", AssetQuote{PercentChange24h: 2.5}.Mood())
	require.Equal(t, "bearish", AssetQuote{PercentChange24h: -2.5}.Mood())
	require.Equal(t, "neutral", AssetQuote{PercentChange24h: 0.5}.Mood())
	require.Equal(t, "neutral", AssetQuote{PercentChange24h: -1.9}.Mood())
}
