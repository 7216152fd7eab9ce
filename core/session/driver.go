// Package session composes the Classifier, Synthetic-Order Builder,
// Cost/Flow Calculator and Chip Analyzer into one per-(symbol, date) run,
// mirroring the teacher's App/RunningTradeHandler split between a
// composition root and per-symbol state ownership.
package session

import (
	"time"

	"github.com/google/uuid"

	"capflow/core/chip"
	"capflow/core/classifier"
	"capflow/core/costflow"
	"capflow/core/synthetic"
	"capflow/core/types"
)

// Params bundles every stage's configuration for one run (§6).
type Params struct {
	Classifier classifier.Thresholds
	Weights    classifier.WeightMap
	Builder    synthetic.Params
	OrderTypeWeights costflow.OrderTypeWeights
	MAPeriods        []int
	FloatMarketCap   float64
	Chip             chip.Params
}

// DefaultParams returns every stage's documented defaults.
func DefaultParams() Params {
	return Params{
		Classifier:       classifier.Thresholds{BigOrderThreshold: 100000, WallThreshold: 10000},
		Weights:          classifier.DefaultWeights(),
		Builder:          synthetic.DefaultParams(),
		OrderTypeWeights: costflow.DefaultOrderTypeWeights(),
		MAPeriods:        []int{5, 10, 20},
		FloatMarketCap:   0,
		Chip:             chip.DefaultParams(),
	}
}

// Driver runs one symbol's session: feed ticks in timestamp order, then
// Finish to get the day's result. A Driver is single-use and single-threaded
// — the caller fans out one Driver per symbol, in parallel, per §5.
type Driver struct {
	symbol string
	date   time.Time
	params Params

	builder  *synthetic.Builder
	counters classifier.QualityCounters

	ticks      []types.Tick
	labeled    []costflow.LabeledTick
	orders     []types.SyntheticOrder
	noiseCount int
}

// New creates a Driver for one (symbol, date) pair.
func New(symbol string, date time.Time, params Params) *Driver {
	return &Driver{
		symbol: symbol,
		date:   date,
		params: params,
		builder: synthetic.New(symbol, params.Builder),
	}
}

// Feed classifies one tick, routes it into the builder, and records it for
// the downstream cost-flow and chip stages. Ticks must arrive in
// non-decreasing timestamp order (§5) — the Driver does not sort.
func (d *Driver) Feed(tick types.Tick) {
	label, weight := classifier.Classify(tick, d.params.Classifier, d.params.Weights, &d.counters)

	if label == types.LabelNoise {
		d.noiseCount++
	}

	d.ticks = append(d.ticks, tick)
	d.labeled = append(d.labeled, costflow.LabeledTick{Tick: tick, Label: label})

	_ = weight // not used downstream: costflow weights whole orders by OrderTypeWeights
	d.orders = append(d.orders, d.builder.Feed(tick, label)...)
}

// Finish flushes the builder's residual buffers, runs the cost-flow and chip
// stages, and returns one stamped DayResult. history is prior days'
// weighted_cost values, most recent first (cross-day state the Driver
// itself never retains, per §9).
func (d *Driver) Finish(history []float64) types.DayResult {
	d.orders = append(d.orders, d.builder.Flush()...)

	flow := costflow.Calculate(d.labeled, d.orders, history, d.params.MAPeriods, d.params.FloatMarketCap, d.params.OrderTypeWeights)
	analysis := chip.Analyze(d.ticks, flow.WeightedCost, d.params.Chip)

	return types.DayResult{
		RunID:  uuid.NewString(),
		Symbol: d.symbol,
		Date:   d.date,

		AggressiveBuyAmount:  flow.AggressiveBuyAmount,
		AggressiveSellAmount: flow.AggressiveSellAmount,
		DefensiveBuyAmount:   flow.DefensiveBuyAmount,
		DefensiveSellAmount:  flow.DefensiveSellAmount,
		AlgoBuyAmount:        flow.AlgoBuyAmount,

		WeightedCost: flow.WeightedCost,
		CostMA:       flow.CostMA,
		NetFlow:      flow.NetFlow,
		NetFlowRaw:   flow.NetFlowRaw,

		ConcentrationRatio: analysis.ConcentrationRatio,
		ChipPeakPrice:      analysis.PeakPrice,
		HasChipPeak:        analysis.HasPeak,
		SupportPrice:       analysis.SupportPrice,
		HasSupport:         analysis.HasSupport,
		ResistancePrice:    analysis.ResistancePrice,
		HasResistance:      analysis.HasResistance,

		ValidationStatus: analysis.Validation,

		NoiseTickCount:      d.noiseCount,
		MissingQuoteCount:   d.counters.MissingQuote,
		AmountMismatchCount: d.counters.AmountMismatch,
	}
}
