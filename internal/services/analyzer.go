// Package services wires the analysis pipeline together: fetch, normalize,
// compute indicators, decide, assemble and persist.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptoadvisor/internal/clients"
	"cryptoadvisor/internal/domain"
	"cryptoadvisor/internal/services/assembler"
	"cryptoadvisor/internal/services/market/analysis"
	"cryptoadvisor/internal/services/market/indicators"
	"cryptoadvisor/internal/services/market/normalizer"
	"cryptoadvisor/internal/services/strategy"
)

// SentimentProvider supplies the externally sourced sentiment summary.
type SentimentProvider interface {
	Summary(ctx context.Context, pair domain.Pair) string
}

// ReportStore persists completed analysis reports.
type ReportStore interface {
	Save(report domain.AnalysisReport) error
}

// AnalysisService runs the full analysis pipeline for one pair and timeframe.
// All pipeline state is request-scoped; concurrent Analyze calls for
// different pairs need no coordination.
type AnalysisService struct {
	pair       domain.Pair
	timeframe  string
	klineLimit int
	params     domain.IndicatorParams

	provider  clients.KlineProvider
	engine    *strategy.Engine
	analyzer  *analysis.MarketAnalyzer
	sentiment SentimentProvider
	advisor   clients.Advisor
	store     ReportStore

	sentimentRequired bool

	l *zap.Logger
}

// NewAnalysisService creates the pipeline for one pair. sentiment, advisor
// and store are optional; a nil advisor skips the reasoning agent call and a
// nil store skips persistence.
func NewAnalysisService(l *zap.Logger, pair domain.Pair, timeframe string, klineLimit int,
	params domain.IndicatorParams, thresholds strategy.Thresholds, provider clients.KlineProvider,
	sentiment SentimentProvider, advisor clients.Advisor, store ReportStore,
	sentimentRequired bool) (*AnalysisService, error) {

	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid indicator params")
	}
	if err := thresholds.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid thresholds")
	}
	if provider == nil {
		return nil, errors.New("kline provider is required")
	}
	if klineLimit < params.MaxLookback()+1 {
		return nil, errors.Errorf("kline limit %d is below the required lookback %d",
			klineLimit, params.MaxLookback()+1)
	}

	return &AnalysisService{
		pair:              pair,
		timeframe:         timeframe,
		klineLimit:        klineLimit,
		params:            params,
		provider:          provider,
		engine:            strategy.NewEngine(thresholds),
		analyzer:          analysis.NewMarketAnalyzer(l),
		sentiment:         sentiment,
		advisor:           advisor,
		store:             store,
		sentimentRequired: sentimentRequired,
		l:                 l,
	}, nil
}

// Analyze runs one full analysis request and returns the report.
func (s *AnalysisService) Analyze(ctx context.Context) (domain.AnalysisReport, error) {
	raw, err := s.provider.GetKlines(ctx, s.pair, s.timeframe, s.klineLimit)
	if err != nil {
		return domain.AnalysisReport{}, errors.Wrapf(err, "fetch klines for %s", s.pair.String())
	}

	// the previous snapshot needs one candle beyond the lookback
	series, err := normalizer.Normalize(raw, s.params.MaxLookback()+1)
	if err != nil {
		return domain.AnalysisReport{}, errors.Wrapf(err, "normalize klines for %s", s.pair.String())
	}

	snapshot, prev, err := indicators.Snapshot(series, s.params)
	if err != nil {
		return domain.AnalysisReport{}, errors.Wrapf(err, "compute indicators for %s", s.pair.String())
	}

	signal := s.engine.Decide(snapshot, prev)

	s.l.Info("signal decided",
		zap.String("pair", s.pair.String()),
		zap.String("action", signal.Action.String()),
		zap.String("confidence", signal.Confidence.String()),
		zap.Strings("reasons", signal.Reasons))

	sentimentSummary := ""
	if s.sentiment != nil {
		sentimentSummary = s.sentiment.Summary(ctx, s.pair)
	}

	agentCtx, err := assembler.Assemble(s.pair, s.timeframe, snapshot, signal, sentimentSummary, s.sentimentRequired)
	if err != nil {
		return domain.AnalysisReport{}, errors.Wrapf(err, "assemble context for %s", s.pair.String())
	}

	report := domain.AnalysisReport{
		ID:        uuid.NewString(),
		Pair:      s.pair.String(),
		Timeframe: s.timeframe,
		Context:   agentCtx,
		Volume:    s.analyzer.AnalyzeVolume(series),
		Trend:     s.analyzer.TrendDirection(series),
		CreatedAt: time.Now().UTC(),
	}

	if s.advisor != nil {
		rec, err := s.advisor.GetRecommendation(ctx, agentCtx, report.Volume, report.Trend)
		if err != nil {
			// the deterministic signal is still worth reporting without the verdict
			s.l.Warn("reasoning agent call failed", zap.String("pair", s.pair.String()), zap.Error(err))
		} else {
			report.Recommendation = rec
			s.l.Info("recommendation received",
				zap.String("pair", s.pair.String()),
				zap.String("action", rec.Action),
				zap.Float64("confidence", rec.Confidence))
		}
	}

	if s.store != nil {
		if err := s.store.Save(report); err != nil {
			s.l.Error("failed to persist report", zap.String("pair", s.pair.String()), zap.Error(err))
		}
	}

	return report, nil
}

// Run analyzes on a fixed interval until the context is cancelled. The first
// analysis happens immediately.
func (s *AnalysisService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Analyze(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.l.Error("analysis failed", zap.String("pair", s.pair.String()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
