// Package classifier labels each trade print by intent — aggressive vs
// defensive, buy vs sell, or noise — as a pure function of the tick and the
// configured thresholds.
package classifier

import "capflow/core/types"

// Thresholds configures the classification decision ladder (§6).
type Thresholds struct {
	BigOrderThreshold float64 // currency
	WallThreshold     float64 // lots
}

// WeightMap is the base-weight table for each label, overridable via config.
type WeightMap map[types.Label]float64

// DefaultWeights returns the §4.1 weight map.
func DefaultWeights() WeightMap {
	return WeightMap{
		types.LabelAggBuy:    1.5,
		types.LabelAggSell:   1.5,
		types.LabelDefBuy:    0.8,
		types.LabelDefSell:   0.8,
		types.LabelSmallBuy:  0.0,
		types.LabelSmallSell: 0.0,
		types.LabelNoise:     0.0,
	}
}

// QualityCounters accumulates the in-band degradation signals §7 asks for.
// The zero value is ready to use.
type QualityCounters struct {
	Malformed     int
	MissingQuote  int
	AmountMismatch int
}

// Classify is a pure function: label + base weight for one tick. Malformed
// ticks never raise; they are tagged NOISE and counted (§7).
func Classify(tick types.Tick, th Thresholds, weights WeightMap, counters *QualityCounters) (types.Label, float64) {
	if isMalformed(tick) {
		if counters != nil {
			counters.Malformed++
		}
		return weightedLabel(types.LabelNoise, weights)
	}

	if checkAmountMismatch(tick) && counters != nil {
		counters.AmountMismatch++
	}

	if tick.Amount < th.BigOrderThreshold {
		return classifySmall(tick, weights)
	}

	if !tick.Quote.Present {
		if counters != nil {
			counters.MissingQuote++
		}
		return classifyWithoutQuote(tick, weights)
	}

	switch tick.Direction {
	case types.DirectionBuy:
		return classifyLargeBuy(tick, th, weights)
	case types.DirectionSell:
		return classifyLargeSell(tick, th, weights)
	default:
		// Direction N with large amount: conservative NOISE (§4.1 step 2).
		return weightedLabel(types.LabelNoise, weights)
	}
}

func isMalformed(tick types.Tick) bool {
	if tick.Amount < 0 {
		return true
	}
	if tick.Quote.Present && tick.Quote.BidPrice > tick.Quote.AskPrice {
		return true
	}
	return false
}

// checkAmountMismatch flags ticks where amount diverges from price*volume by
// more than a small tolerance (§9). Amount remains authoritative regardless.
func checkAmountMismatch(tick types.Tick) bool {
	expected := tick.Price * tick.Volume
	if expected == 0 {
		return false
	}
	diff := tick.Amount - expected
	if diff < 0 {
		diff = -diff
	}
	return diff/expected > 0.01
}

func classifySmall(tick types.Tick, weights WeightMap) (types.Label, float64) {
	switch tick.Direction {
	case types.DirectionBuy:
		return weightedLabel(types.LabelSmallBuy, weights)
	case types.DirectionSell:
		return weightedLabel(types.LabelSmallSell, weights)
	default:
		return weightedLabel(types.LabelNoise, weights)
	}
}

func classifyWithoutQuote(tick types.Tick, weights WeightMap) (types.Label, float64) {
	// Large print, no quote context: fall back to direction alone (§4.1 step 3).
	switch tick.Direction {
	case types.DirectionBuy:
		return weightedLabel(types.LabelAggBuy, weights)
	case types.DirectionSell:
		return weightedLabel(types.LabelAggSell, weights)
	default:
		return weightedLabel(types.LabelNoise, weights)
	}
}

func classifyLargeBuy(tick types.Tick, th Thresholds, weights WeightMap) (types.Label, float64) {
	q := tick.Quote

	// Locked market tie-break: defensive side (§4.1 tie-breaks).
	if tick.Price == q.BidPrice && q.BidPrice == q.AskPrice {
		return weightedLabel(types.LabelDefBuy, weights)
	}

	if tick.Price >= q.AskPrice {
		return weightedLabel(types.LabelAggBuy, weights)
	}
	if tick.Price <= q.BidPrice && q.BidVolume >= th.WallThreshold {
		return weightedLabel(types.LabelDefBuy, weights)
	}

	distToAsk := absf(tick.Price - q.AskPrice)
	distToBid := absf(tick.Price - q.BidPrice)
	if distToAsk < distToBid {
		return weightedLabel(types.LabelAggBuy, weights)
	}
	return weightedLabel(types.LabelDefBuy, weights)
}

func classifyLargeSell(tick types.Tick, th Thresholds, weights WeightMap) (types.Label, float64) {
	q := tick.Quote

	if tick.Price == q.BidPrice && q.BidPrice == q.AskPrice {
		return weightedLabel(types.LabelDefSell, weights)
	}

	// Sell side is symmetric: crossing the bid is aggressive.
	if tick.Price <= q.BidPrice {
		return weightedLabel(types.LabelAggSell, weights)
	}
	if tick.Price >= q.AskPrice && q.AskVolume >= th.WallThreshold {
		return weightedLabel(types.LabelDefSell, weights)
	}

	distToAsk := absf(tick.Price - q.AskPrice)
	distToBid := absf(tick.Price - q.BidPrice)
	if distToBid < distToAsk {
		return weightedLabel(types.LabelAggSell, weights)
	}
	return weightedLabel(types.LabelDefSell, weights)
}

func weightedLabel(label types.Label, weights WeightMap) (types.Label, float64) {
	return label, weights[label]
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
