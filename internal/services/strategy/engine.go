// Package strategy implements the signal decision engine: threshold and
// crossover rules over the latest indicator snapshot classifying the market
// as BUY, SELL or HOLD.
package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoadvisor/internal/domain"
)

var (
	fifty   = decimal.NewFromInt(50)
	hundred = decimal.NewFromInt(100)
)

// Thresholds RSI levels gating the decision rules. Kept configurable rather
// than hardcoded so a strategy instance can tune them per asset.
type Thresholds struct {
	// Oversold RSI level below which the market counts as oversold.
	Oversold decimal.Decimal
	// Overbought RSI level above which the market counts as overbought.
	Overbought decimal.Decimal
}

// DefaultThresholds returns the stock 30/70 RSI levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Oversold:   decimal.NewFromInt(30),
		Overbought: decimal.NewFromInt(70),
	}
}

// Validate validates the thresholds.
func (t Thresholds) Validate() error {
	if t.Oversold.IsNegative() || t.Oversold.GreaterThan(hundred) {
		return fmt.Errorf("oversold threshold out of range: %s", t.Oversold)
	}
	if t.Overbought.IsNegative() || t.Overbought.GreaterThan(hundred) {
		return fmt.Errorf("overbought threshold out of range: %s", t.Overbought)
	}
	return nil
}

// Engine classifies indicator snapshots into trading signals. It carries no
// state between calls; crossover detection relies solely on the previous
// snapshot passed in by the caller.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates a decision engine with the given thresholds.
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// condition one evaluated decision rule.
type condition struct {
	triggered bool
	reasons   []string
	strength  decimal.Decimal
}

// Decide classifies the snapshot. It is a pure function of its inputs: the
// same snapshot pair always yields an identical signal, including the
// ordering of reasons. Contradictory buy and sell conditions resolve to HOLD,
// never an arbitrary pick.
func (e *Engine) Decide(snapshot domain.IndicatorSnapshot, prev *domain.IndicatorSnapshot) domain.Signal {
	rsiStrength := clamp01(snapshot.RSI.Sub(fifty).Abs().Div(fifty))

	buyBand := e.evalBuyBand(snapshot, rsiStrength)
	buyCross := e.evalBuyCross(snapshot, prev, rsiStrength)
	sellBand := e.evalSellBand(snapshot, rsiStrength)
	sellCross := e.evalSellCross(snapshot, prev, rsiStrength)

	buyStrength := maxStrength(buyBand, buyCross)
	sellStrength := maxStrength(sellBand, sellCross)

	buyTriggered := buyBand.triggered || buyCross.triggered
	sellTriggered := sellBand.triggered || sellCross.triggered

	switch {
	case buyTriggered && sellTriggered:
		reasons := collectReasons(buyBand, buyCross, sellBand, sellCross)
		reasons = append(reasons, "buy and sell conditions triggered simultaneously, resolved to hold")
		return domain.Signal{
			Action:     domain.ActionHold,
			Confidence: clamp01(decimal.NewFromInt(1).Sub(decimal.Max(buyStrength, sellStrength))),
			Reasons:    reasons,
		}
	case buyTriggered:
		return domain.Signal{
			Action:     domain.ActionBuy,
			Confidence: buyStrength,
			Reasons:    collectReasons(buyBand, buyCross),
		}
	case sellTriggered:
		return domain.Signal{
			Action:     domain.ActionSell,
			Confidence: sellStrength,
			Reasons:    collectReasons(sellBand, sellCross),
		}
	default:
		reasons := make([]string, 0, 2)
		if prev == nil {
			reasons = append(reasons, "no previous snapshot, crossover rules skipped")
		}
		reasons = append(reasons, "no decision condition met")
		return domain.Signal{
			Action:     domain.ActionHold,
			Confidence: decimal.NewFromInt(1),
			Reasons:    reasons,
		}
	}
}

func (e *Engine) evalBuyBand(s domain.IndicatorSnapshot, rsiStrength decimal.Decimal) condition {
	if !s.Close.LessThanOrEqual(s.VWAPLower) || !s.RSI.LessThan(e.thresholds.Oversold) {
		return condition{strength: decimal.Zero}
	}
	return condition{
		triggered: true,
		reasons: []string{
			fmt.Sprintf("close %s at or below lower VWAP band %s", s.Close, s.VWAPLower),
			fmt.Sprintf("RSI %s below oversold threshold %s", s.RSI, e.thresholds.Oversold),
		},
		strength: rsiStrength.Mul(bandExcursion(s.VWAPLower.Sub(s.Close), s.VWAP.Sub(s.VWAPLower))),
	}
}

func (e *Engine) evalBuyCross(s domain.IndicatorSnapshot, prev *domain.IndicatorSnapshot, rsiStrength decimal.Decimal) condition {
	if prev == nil {
		return condition{strength: decimal.Zero}
	}
	crossedUp := prev.EMA.LessThan(prev.VWAP) && s.EMA.GreaterThan(s.VWAP)
	if !crossedUp || !s.RSI.LessThan(e.thresholds.Overbought) {
		return condition{strength: decimal.Zero}
	}
	return condition{
		triggered: true,
		reasons: []string{
			fmt.Sprintf("EMA crossed above VWAP (%s -> %s vs %s -> %s)", prev.EMA, s.EMA, prev.VWAP, s.VWAP),
			fmt.Sprintf("RSI %s below overbought threshold %s", s.RSI, e.thresholds.Overbought),
		},
		strength: rsiStrength,
	}
}

func (e *Engine) evalSellBand(s domain.IndicatorSnapshot, rsiStrength decimal.Decimal) condition {
	if !s.Close.GreaterThanOrEqual(s.VWAPUpper) || !s.RSI.GreaterThan(e.thresholds.Overbought) {
		return condition{strength: decimal.Zero}
	}
	return condition{
		triggered: true,
		reasons: []string{
			fmt.Sprintf("close %s at or above upper VWAP band %s", s.Close, s.VWAPUpper),
			fmt.Sprintf("RSI %s above overbought threshold %s", s.RSI, e.thresholds.Overbought),
		},
		strength: rsiStrength.Mul(bandExcursion(s.Close.Sub(s.VWAPUpper), s.VWAPUpper.Sub(s.VWAP))),
	}
}

func (e *Engine) evalSellCross(s domain.IndicatorSnapshot, prev *domain.IndicatorSnapshot, rsiStrength decimal.Decimal) condition {
	if prev == nil {
		return condition{strength: decimal.Zero}
	}
	crossedDown := prev.EMA.GreaterThan(prev.VWAP) && s.EMA.LessThan(s.VWAP)
	if !crossedDown || !s.RSI.GreaterThan(e.thresholds.Oversold) {
		return condition{strength: decimal.Zero}
	}
	return condition{
		triggered: true,
		reasons: []string{
			fmt.Sprintf("EMA crossed below VWAP (%s -> %s vs %s -> %s)", prev.EMA, s.EMA, prev.VWAP, s.VWAP),
			fmt.Sprintf("RSI %s above oversold threshold %s", s.RSI, e.thresholds.Oversold),
		},
		strength: rsiStrength,
	}
}

// bandExcursion expresses how far price sits outside its triggering band as a
// ratio of the band half-width, capped at 1. A close exactly on the band
// scores 0, a close a full half-width beyond it scores 1.
func bandExcursion(distance, halfWidth decimal.Decimal) decimal.Decimal {
	if !halfWidth.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return clamp01(distance.Div(halfWidth))
}

func maxStrength(conds ...condition) decimal.Decimal {
	strength := decimal.Zero
	for _, c := range conds {
		if c.triggered && c.strength.GreaterThan(strength) {
			strength = c.strength
		}
	}
	return strength
}

func collectReasons(conds ...condition) []string {
	var reasons []string
	for _, c := range conds {
		if c.triggered {
			reasons = append(reasons, c.reasons...)
		}
	}
	return reasons
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return d
}
