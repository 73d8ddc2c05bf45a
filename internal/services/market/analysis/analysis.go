// Package analysis provides supporting market studies: volume metrics and
// higher-order trend direction. These enrich the agent context but do not
// participate in the deterministic signal decision.
package analysis

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoadvisor/internal/domain"
)

const (
	// volumePeriod length of the simple moving average of volume.
	volumePeriod = 20
	// spikeFactor relative volume above which a candle counts as a spike.
	spikeFactor = 1.5

	trendFastPeriod = 50
	trendSlowPeriod = 200
)

// MarketAnalyzer analyzes market structure and patterns.
type MarketAnalyzer struct {
	logger *zap.Logger
}

// NewMarketAnalyzer creates a new MarketAnalyzer instance.
func NewMarketAnalyzer(logger *zap.Logger) *MarketAnalyzer {
	return &MarketAnalyzer{logger: logger}
}

// AnalyzeVolume calculates volume metrics and identifies spikes.
func (m *MarketAnalyzer) AnalyzeVolume(series domain.KlineSeries) domain.VolumeAnalysis {
	if len(series) == 0 {
		m.logger.Warn("no kline data for volume analysis")
		return domain.VolumeAnalysis{
			CurrentVolume:  decimal.Zero,
			AverageVolume:  decimal.Zero,
			RelativeVolume: decimal.Zero,
			SpikeIndexes:   []int{},
		}
	}

	period := volumePeriod
	if len(series) < period {
		period = len(series)
	}

	sum := decimal.Zero
	for i := len(series) - period; i < len(series); i++ {
		sum = sum.Add(series[i].Volume)
	}
	avgVolume := sum.Div(decimal.NewFromInt(int64(period)))

	currentVolume := series[len(series)-1].Volume

	relativeVolume := decimal.Zero
	if avgVolume.GreaterThan(decimal.Zero) {
		relativeVolume = currentVolume.Div(avgVolume)
	}

	spikeThreshold := avgVolume.Mul(decimal.NewFromFloat(spikeFactor))
	spikes := []int{}
	for i := range series {
		if series[i].Volume.GreaterThan(spikeThreshold) {
			spikes = append(spikes, i)
		}
	}

	return domain.VolumeAnalysis{
		CurrentVolume:  currentVolume,
		AverageVolume:  avgVolume,
		RelativeVolume: relativeVolume,
		SpikeIndexes:   spikes,
	}
}

// TrendDirection classifies the broad trend from the 50 and 200 period EMAs.
// Series too short for the slow EMA are reported as neutral.
func (m *MarketAnalyzer) TrendDirection(series domain.KlineSeries) domain.TrendDirection {
	if len(series) < trendSlowPeriod {
		m.logger.Debug("series too short for trend classification",
			zap.Int("candles", len(series)), zap.Int("required", trendSlowPeriod))
		return domain.TrendDirectionNeutral
	}

	closes := make([]float64, len(series))
	for i, c := range series {
		closes[i] = c.Close.InexactFloat64()
	}

	fast := lastEMA(closes, trendFastPeriod)
	slow := lastEMA(closes, trendSlowPeriod)
	price := closes[len(closes)-1]

	switch {
	case price > fast && fast > slow:
		return domain.TrendDirectionBullish
	case price < fast && fast < slow:
		return domain.TrendDirectionBearish
	default:
		return domain.TrendDirectionNeutral
	}
}

func lastEMA(closes []float64, period int) float64 {
	ema := trend.NewEmaWithPeriod[float64](period)
	values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
