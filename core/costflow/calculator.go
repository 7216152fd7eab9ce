// Package costflow computes the intent-weighted VWAP cost basis and net
// flow from one session's labeled ticks and synthetic orders, stateless
// over both lists plus a cross-day history of prior weighted_cost values
// (§4.3, §9 — the Calculator itself holds no state so every session stays
// independently replayable).
package costflow

import "capflow/core/types"

// OrderTypeWeights maps a synthetic order's type to its own base weight,
// independent of the classifier's per-label weights (§4.3: "Wi =
// base_weight(order_type) × confidence").
type OrderTypeWeights map[types.OrderType]float64

// DefaultOrderTypeWeights gives an untouched ORIGINAL order the heaviest base
// weight (1.5) and discounts algo-detected splits slightly (1.3). The
// builder's confidence multiplies on top of these, so an ORIGINAL order's
// effective weight is 1.5 × 1.0 and an ALGO_* order's is 1.3 × 1.3.
func DefaultOrderTypeWeights() OrderTypeWeights {
	return OrderTypeWeights{
		types.OrderTypeOriginal: 1.5,
		types.OrderTypeAlgoTWAP: 1.3,
		types.OrderTypeAlgoVWAP: 1.3,
	}
}

// LabeledTick pairs a tick with the label the classifier assigned it, the
// unit the per-intent amount aggregates are built from (§4.3).
type LabeledTick struct {
	Tick  types.Tick
	Label types.Label
}

// Result is the calculator's output for one session.
type Result struct {
	WeightedCost float64
	CostMA       map[int]float64

	NetFlow    float64
	NetFlowRaw bool

	AggressiveBuyAmount  float64
	AggressiveSellAmount float64
	DefensiveBuyAmount   float64
	DefensiveSellAmount  float64
	AlgoBuyAmount        float64
}

// Calculate computes weighted cost, moving averages, net flow and per-intent
// aggregates for one session.
//
// ticks drives the per-intent amount slices (aggressive/defensive buy/sell),
// since that granularity lives on the classifier's label, not on a
// synthetic order's coarser order type. orders drives weighted cost, net
// flow and the algo-buy slice. history is prior days' weighted_cost values,
// most recent first; maPeriods are the moving-average windows to compute
// (e.g. [5, 10, 20]). floatMarketCap normalizes net flow; 0 means
// unavailable, in which case NetFlowRaw is set and NetFlow carries the
// unnormalized (in - out).
func Calculate(ticks []LabeledTick, orders []types.SyntheticOrder, history []float64, maPeriods []int, floatMarketCap float64, weights OrderTypeWeights) Result {
	weightedCost := weightedCostOf(orders, weights)

	full := append([]float64{weightedCost}, history...)
	costMA := make(map[int]float64, len(maPeriods))
	for _, period := range maPeriods {
		costMA[period] = movingAverage(full, period)
	}

	var aggBuy, aggSell, defBuy, defSell kahanSum
	for _, lt := range ticks {
		switch lt.Label {
		case types.LabelAggBuy:
			aggBuy.add(lt.Tick.Amount)
		case types.LabelAggSell:
			aggSell.add(lt.Tick.Amount)
		case types.LabelDefBuy:
			defBuy.add(lt.Tick.Amount)
		case types.LabelDefSell:
			defSell.add(lt.Tick.Amount)
		}
	}

	var algoBuy kahanSum
	var in, out kahanSum
	for _, o := range orders {
		w := orderWeight(o, weights)
		if o.OrderType == types.OrderTypeAlgoTWAP || o.OrderType == types.OrderTypeAlgoVWAP {
			if o.Direction == types.OrderBuy {
				algoBuy.add(o.TotalAmount)
			}
		}
		if o.Direction == types.OrderBuy {
			in.add(o.TotalAmount * w)
		} else {
			out.add(o.TotalAmount * w)
		}
	}

	netFlow := in.value() - out.value()
	netFlowRaw := floatMarketCap == 0
	if !netFlowRaw {
		netFlow = netFlow / floatMarketCap
	}

	return Result{
		WeightedCost:         weightedCost,
		CostMA:               costMA,
		NetFlow:              netFlow,
		NetFlowRaw:           netFlowRaw,
		AggressiveBuyAmount:  aggBuy.value(),
		AggressiveSellAmount: aggSell.value(),
		DefensiveBuyAmount:   defBuy.value(),
		DefensiveSellAmount:  defSell.value(),
		AlgoBuyAmount:        algoBuy.value(),
	}
}

func orderWeight(o types.SyntheticOrder, weights OrderTypeWeights) float64 {
	return weights[o.OrderType] * o.Confidence
}

// weightedCostOf implements the §4.3 Kahan-summed weighted cost formula.
// Only BUY orders contribute.
func weightedCostOf(orders []types.SyntheticOrder, weights OrderTypeWeights) float64 {
	var numerator, denominator kahanSum
	for _, o := range orders {
		if o.Direction != types.OrderBuy {
			continue
		}
		w := orderWeight(o, weights)
		numerator.add(o.TotalAmount * w)
		denominator.add(o.TotalVolume * w)
	}
	if denominator.value() == 0 {
		return 0
	}
	return numerator.value() / denominator.value()
}

// movingAverage returns the mean of the first N entries, or the mean of all
// entries if fewer than N exist (§4.3). Entries with value 0 (no qualifying
// BUY flow that day) are included deliberately, per spec — the window never
// silently shifts to skip them.
func movingAverage(chronological []float64, n int) float64 {
	if n > len(chronological) {
		n = len(chronological)
	}
	if n == 0 {
		return 0
	}
	var sum kahanSum
	for i := 0; i < n; i++ {
		sum.add(chronological[i])
	}
	return sum.value() / float64(n)
}

// kahanSum is a numerically stable accumulator (§4.3: "numerically stable
// sum ... Kahan summation recommended"). No library in the retrieved
// examples offers compensated floating-point summation, so this stays
// hand-rolled.
type kahanSum struct {
	sum float64
	c   float64
}

func (k *kahanSum) add(x float64) {
	y := x - k.c
	t := k.sum + y
	k.c = (t - k.sum) - y
	k.sum = t
}

func (k *kahanSum) value() float64 {
	return k.sum
}
