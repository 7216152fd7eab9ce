// Package chip builds a price/volume distribution ("chip pile") over one
// session's ticks, locates the dominant accumulation price, proposes
// support/resistance levels, and cross-checks the distribution against the
// weighted cost estimate the costflow package produced (§4.4).
package chip

import "capflow/core/types"

// Params configures bucketing and validation (§6).
type Params struct {
	PriceBins          int     // number of buckets spanning [min_price, max_price]
	ConcentrationRatio float64 // top-k-bucket share threshold treated as "concentrated"
	ValidationDistance float64 // max allowed fractional distance between weighted cost and the chip peak
}

// DefaultParams returns the §6 defaults.
func DefaultParams() Params {
	return Params{
		PriceBins:          100,
		ConcentrationRatio: 0.6,
		ValidationDistance: 0.20,
	}
}

// Result is the chip analyzer's output for one session.
type Result struct {
	Distribution types.ChipDistribution

	ConcentrationRatio float64

	PeakPrice float64
	HasPeak   bool

	SupportPrice    float64
	HasSupport      bool
	ResistancePrice float64
	HasResistance   bool

	Validation types.ValidationStatus
}

// Analyze builds the distribution from ticks, locates the volume peak,
// proposes support/resistance around the session close, and validates the
// result against weightedCost (the costflow package's weighted cost for the
// same session).
func Analyze(ticks []types.Tick, weightedCost float64, params Params) Result {
	bins := params.PriceBins
	if bins <= 0 {
		bins = DefaultParams().PriceBins
	}
	dist := buildDistribution(ticks, bins)

	concentration := concentrationRatio(dist, bins)

	peakPrice, hasPeak := peakOf(dist)

	var referencePrice float64
	if len(ticks) > 0 {
		referencePrice = ticks[len(ticks)-1].Price
	}
	supportPrice, hasSupport, resistancePrice, hasResistance := supportResistance(dist, referencePrice)

	validation := validate(dist, weightedCost, params.ValidationDistance)

	return Result{
		Distribution:       dist,
		ConcentrationRatio: concentration,
		PeakPrice:          peakPrice,
		HasPeak:            hasPeak,
		SupportPrice:       supportPrice,
		HasSupport:         hasSupport,
		ResistancePrice:    resistancePrice,
		HasResistance:      hasResistance,
		Validation:         validation,
	}
}

// buildDistribution spans [min_price, max_price] with bins equal-width
// buckets, centers at min + (i+0.5)*step. A degenerate single-price session
// emits one bucket carrying the total volume (§4.4).
func buildDistribution(ticks []types.Tick, bins int) types.ChipDistribution {
	if len(ticks) == 0 {
		return types.ChipDistribution{}
	}

	min, max := ticks[0].Price, ticks[0].Price
	for _, t := range ticks[1:] {
		if t.Price < min {
			min = t.Price
		}
		if t.Price > max {
			max = t.Price
		}
	}

	if max == min {
		var total float64
		for _, t := range ticks {
			total += t.Volume
		}
		return types.ChipDistribution{
			Buckets: []types.ChipBucket{{PriceCenter: min, Volume: total}},
			Step:    0,
		}
	}

	step := (max - min) / float64(bins)
	volumes := make([]float64, bins)
	for _, t := range ticks {
		idx := int((t.Price - min) / step)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		volumes[idx] += t.Volume
	}

	buckets := make([]types.ChipBucket, bins)
	for i := 0; i < bins; i++ {
		buckets[i] = types.ChipBucket{
			PriceCenter: min + (float64(i)+0.5)*step,
			Volume:      volumes[i],
		}
	}
	return types.ChipDistribution{Buckets: buckets, Step: step}
}

// peakOf returns the highest-volume bucket's price center, ties broken by
// lower price (§4.4). Buckets are already in ascending-price order, so a
// strict ">" comparison keeps the lower-priced bucket on a tie.
func peakOf(dist types.ChipDistribution) (float64, bool) {
	if len(dist.Buckets) == 0 {
		return 0, false
	}
	best := dist.Buckets[0]
	for _, b := range dist.Buckets[1:] {
		if b.Volume > best.Volume {
			best = b
		}
	}
	if best.Volume <= 0 {
		return 0, false
	}
	return best.PriceCenter, true
}

// supportResistance returns the highest-volume bucket at or below reference
// as support, and the highest-volume bucket strictly above reference as
// resistance (§4.4). Buckets with zero volume still qualify — the
// distribution's bucket, not its volume, is what's being located.
func supportResistance(dist types.ChipDistribution, reference float64) (support float64, hasSupport bool, resistance float64, hasResistance bool) {
	var below, above types.ChipBucket
	foundBelow, foundAbove := false, false
	for _, b := range dist.Buckets {
		if b.PriceCenter <= reference {
			if !foundBelow || b.Volume > below.Volume {
				below = b
				foundBelow = true
			}
		} else {
			if !foundAbove || b.Volume > above.Volume {
				above = b
				foundAbove = true
			}
		}
	}
	return below.PriceCenter, foundBelow, above.PriceCenter, foundAbove
}

// concentrationRatio returns the volume share held by the top-k buckets by
// volume, out of total distribution volume, where k = max(1, floor(bins/5))
// (§4.4).
func concentrationRatio(dist types.ChipDistribution, bins int) float64 {
	if len(dist.Buckets) == 0 {
		return 0
	}
	k := bins / 5
	if k < 1 {
		k = 1
	}

	sorted := append([]types.ChipBucket(nil), dist.Buckets...)
	// Simple selection sort is fine: bucket counts stay small (bounded by
	// price_bins) and this keeps the implementation allocation-free beyond
	// the copy.
	for i := 0; i < len(sorted); i++ {
		maxIdx := i
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Volume > sorted[maxIdx].Volume {
				maxIdx = j
			}
		}
		sorted[i], sorted[maxIdx] = sorted[maxIdx], sorted[i]
	}

	var total, top float64
	for _, b := range dist.Buckets {
		total += b.Volume
	}
	if total == 0 {
		return 0
	}
	if k > len(sorted) {
		k = len(sorted)
	}
	for i := 0; i < k; i++ {
		top += sorted[i].Volume
	}
	return top / total
}

// validate cross-checks weightedCost against the chip distribution's peak:
// if the two diverge by more than distance, the day's cost estimate is
// flagged INVALID rather than silently trusted (§4.4, §7).
func validate(dist types.ChipDistribution, weightedCost, distance float64) types.ValidationStatus {
	peak, hasPeak := peakOf(dist)
	if !hasPeak {
		return types.ValidationValid
	}
	diff := weightedCost - peak
	if diff < 0 {
		diff = -diff
	}
	if diff/peak > distance {
		return types.ValidationInvalid
	}
	return types.ValidationValid
}
