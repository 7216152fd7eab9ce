// Package synthetic aggregates contemporaneous small prints into synthetic
// orders that approximate split parent orders (TWAP/VWAP-style algorithmic
// execution). One Builder instance is owned per symbol by the session
// driver, mirroring the teacher's per-symbol OrderFlowAggregator.
package synthetic

import (
	"math"
	"time"

	"github.com/google/uuid"

	"capflow/core/types"
)

// Params configures the Builder (§6).
type Params struct {
	WindowSec           int
	SyntheticThreshold  float64
	// TWAPVarianceThreshold is the interval-variance cutoff (seconds^2) below
	// which a buffer is classified ALGO_TWAP. Default 1.0 (§4.2).
	TWAPVarianceThreshold float64
	// VWAPCoVThreshold is the variance/mean cutoff below which a buffer is
	// classified ALGO_VWAP. Preserved as variance/mean, not stddev/mean, per
	// spec §9's parity instruction. Default 0.3.
	VWAPCoVThreshold float64
}

// DefaultParams returns the §6 defaults.
func DefaultParams() Params {
	return Params{
		WindowSec:             30,
		SyntheticThreshold:    500000,
		TWAPVarianceThreshold: 1.0,
		VWAPCoVThreshold:      0.3,
	}
}

type entry struct {
	tick  types.Tick
	label types.Label
}

// Builder holds the per-symbol, per-side rolling windows.
type Builder struct {
	symbol string
	params Params

	buy  []entry
	sell []entry
}

// New creates a Builder for one symbol.
func New(symbol string, params Params) *Builder {
	return &Builder{symbol: symbol, params: params}
}

// Feed routes a (tick, label) pair into the appropriate side buffer, evicts
// expired entries using the incoming tick's timestamp as "now" (event time,
// not wall clock — required for replay determinism, §4.2/§9), then attempts
// emission on both sides. Returns zero or more synthetic orders, buy-side
// emission ordered before sell-side (§5).
func (b *Builder) Feed(tick types.Tick, label types.Label) []types.SyntheticOrder {
	switch {
	case label.IsBuySide():
		b.buy = append(b.buy, entry{tick, label})
	case label.IsSellSide():
		b.sell = append(b.sell, entry{tick, label})
	default:
		// NOISE is ignored for synthesis (§4.2 step 1).
		return nil
	}

	b.buy = evict(b.buy, tick.Timestamp, b.params.WindowSec)
	b.sell = evict(b.sell, tick.Timestamp, b.params.WindowSec)

	var out []types.SyntheticOrder
	if order, ok := b.attemptEmit(types.OrderBuy); ok {
		out = append(out, order)
		b.buy = nil
	}
	if order, ok := b.attemptEmit(types.OrderSell); ok {
		out = append(out, order)
		b.sell = nil
	}
	return out
}

// Flush emits any residual buffer whose cumulative amount already reaches
// the threshold, and discards sub-threshold remnants. Called once at session
// end.
func (b *Builder) Flush() []types.SyntheticOrder {
	var out []types.SyntheticOrder
	if order, ok := b.buildIfThresholdMet(b.buy, types.OrderBuy); ok {
		out = append(out, order)
	}
	if order, ok := b.buildIfThresholdMet(b.sell, types.OrderSell); ok {
		out = append(out, order)
	}
	b.buy = nil
	b.sell = nil
	return out
}

func evict(buf []entry, now time.Time, windowSec int) []entry {
	if len(buf) == 0 {
		return buf
	}
	cutoff := now.Add(-time.Duration(windowSec) * time.Second)
	kept := buf[:0:0]
	for _, e := range buf {
		if !e.tick.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}

// attemptEmit checks the threshold and, if met, builds and clears the side.
func (b *Builder) attemptEmit(dir types.OrderDirection) (types.SyntheticOrder, bool) {
	buf := b.sideBuffer(dir)
	return b.buildIfThresholdMet(buf, dir)
}

func (b *Builder) buildIfThresholdMet(buf []entry, dir types.OrderDirection) (types.SyntheticOrder, bool) {
	if len(buf) == 0 {
		return types.SyntheticOrder{}, false
	}
	total := sumAmount(buf)
	if total < b.params.SyntheticThreshold {
		return types.SyntheticOrder{}, false
	}
	return b.build(buf, dir), true
}

func (b *Builder) sideBuffer(dir types.OrderDirection) []entry {
	if dir == types.OrderBuy {
		return b.buy
	}
	return b.sell
}

func sumAmount(buf []entry) float64 {
	var sum float64
	for _, e := range buf {
		sum += e.tick.Amount
	}
	return sum
}

func (b *Builder) build(buf []entry, dir types.OrderDirection) types.SyntheticOrder {
	start := buf[0].tick.Timestamp
	end := buf[0].tick.Timestamp
	var totalVolume, totalAmount float64
	for _, e := range buf {
		if e.tick.Timestamp.Before(start) {
			start = e.tick.Timestamp
		}
		if e.tick.Timestamp.After(end) {
			end = e.tick.Timestamp
		}
		totalVolume += e.tick.Volume
		totalAmount += e.tick.Amount
	}

	orderType, confidence := detectPattern(buf, b.params)

	return types.SyntheticOrder{
		ID:          uuid.NewString(),
		Symbol:      b.symbol,
		StartTime:   start,
		EndTime:     end,
		Direction:   dir,
		TotalVolume: totalVolume,
		TotalAmount: totalAmount,
		TickCount:   len(buf),
		OrderType:   orderType,
		Confidence:  confidence,
	}
}

// detectPattern implements the §4.2 pattern-detection ladder.
func detectPattern(buf []entry, params Params) (types.OrderType, float64) {
	if len(buf) < 3 {
		return types.OrderTypeOriginal, 1.0
	}

	intervals := make([]float64, 0, len(buf)-1)
	for i := 0; i+1 < len(buf); i++ {
		intervals = append(intervals, buf[i+1].tick.Timestamp.Sub(buf[i].tick.Timestamp).Seconds())
	}
	if variance(intervals) < params.TWAPVarianceThreshold {
		return types.OrderTypeAlgoTWAP, 1.3
	}

	amounts := make([]float64, 0, len(buf))
	for _, e := range buf {
		amounts = append(amounts, e.tick.Amount)
	}
	mean := meanOf(amounts)
	if mean > 0 && variance(amounts)/mean < params.VWAPCoVThreshold {
		return types.OrderTypeAlgoVWAP, 1.3
	}

	return types.OrderTypeOriginal, 1.0
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := meanOf(xs)
	var sum float64
	for _, x := range xs {
		sum += math.Pow(x-m, 2)
	}
	return sum / float64(len(xs))
}
