package chip

import (
	"math"
	"testing"

	"capflow/core/types"
)

func mkTick(price, volume float64) types.Tick {
	return types.Tick{Price: price, Volume: volume}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Three distinct prices over PriceBins=3 land cleanly one-per-bucket:
// step = (3.0-1.0)/3, bucket1's center works out to exactly 2.0.
func TestAnalyze_PeakIsHighestVolumeBucket(t *testing.T) {
	ticks := []types.Tick{
		mkTick(1.0, 300),
		mkTick(2.0, 3000),
		mkTick(3.0, 500),
	}
	params := DefaultParams()
	params.PriceBins = 3
	result := Analyze(ticks, 0, params)
	if !result.HasPeak {
		t.Fatalf("expected a peak")
	}
	if !almostEqual(result.PeakPrice, 2.0) {
		t.Fatalf("expected peak at 2.0, got %v", result.PeakPrice)
	}
}

func TestAnalyze_SupportAndResistanceBracketTheSessionClose(t *testing.T) {
	// Last tick fed is the reference price (session close), not the peak.
	ticks := []types.Tick{
		mkTick(1.0, 300),
		mkTick(3.0, 500),
		mkTick(2.0, 3000), // session close
	}
	params := DefaultParams()
	params.PriceBins = 3
	result := Analyze(ticks, 0, params)
	if !result.HasSupport || !almostEqual(result.SupportPrice, 2.0) {
		t.Fatalf("expected support at 2.0 (the close's own bucket), got %v (has=%v)", result.SupportPrice, result.HasSupport)
	}
	if !result.HasResistance {
		t.Fatalf("expected a resistance bucket above the close")
	}
	if result.ResistancePrice <= 2.0 {
		t.Fatalf("expected resistance strictly above the close, got %v", result.ResistancePrice)
	}
}

func TestAnalyze_NoSupportWhenCloseIsBelowEveryBucket(t *testing.T) {
	ticks := []types.Tick{
		mkTick(1.0, 300),
		mkTick(3.0, 500),
		mkTick(1.0, 3000), // session close, below the 2.0 bucket's center
	}
	params := DefaultParams()
	params.PriceBins = 3
	result := Analyze(ticks, 0, params)
	if result.HasSupport {
		t.Fatalf("expected no support when the close sits below every bucket center, got %v", result.SupportPrice)
	}
	if !result.HasResistance {
		t.Fatalf("expected a resistance bucket above the close")
	}
}

func TestAnalyze_EmptyTicksYieldNoPeak(t *testing.T) {
	result := Analyze(nil, 0, DefaultParams())
	if result.HasPeak {
		t.Fatalf("expected no peak for empty tick list")
	}
	if result.Validation != types.ValidationValid {
		t.Fatalf("expected empty session to validate, got %s", result.Validation)
	}
}

// PriceBins=5 makes k = max(1, floor(5/5)) = 1, so concentration is the
// single busiest bucket's share.
func TestAnalyze_ConcentrationRatioUsesBinsOverFiveBuckets(t *testing.T) {
	ticks := []types.Tick{
		mkTick(0, 100),
		mkTick(1, 6000),
		mkTick(2, 200),
		mkTick(3, 300),
		mkTick(4, 400),
	}
	params := DefaultParams()
	params.PriceBins = 5
	result := Analyze(ticks, 0, params)
	want := 6000.0 / 7000.0
	if !almostEqual(result.ConcentrationRatio, want) {
		t.Fatalf("expected concentration %v, got %v", want, result.ConcentrationRatio)
	}
}

func TestAnalyze_ValidationPassesWithinDistance(t *testing.T) {
	ticks := []types.Tick{
		mkTick(10.00, 5000),
	}
	result := Analyze(ticks, 10.02, DefaultParams())
	if result.Validation != types.ValidationValid {
		t.Fatalf("expected VALID within the validation distance, got %s", result.Validation)
	}
}

func TestAnalyze_ValidationFailsOutsideDistance(t *testing.T) {
	ticks := []types.Tick{
		mkTick(10.00, 5000),
	}
	result := Analyze(ticks, 15.00, DefaultParams())
	if result.Validation != types.ValidationInvalid {
		t.Fatalf("expected INVALID when cost diverges from the chip peak by more than 0.20, got %s", result.Validation)
	}
}

func TestAnalyze_SinglePriceSessionYieldsOneBucket(t *testing.T) {
	ticks := []types.Tick{
		mkTick(10.0, 100),
		mkTick(10.0, 200),
	}
	result := Analyze(ticks, 0, DefaultParams())
	if len(result.Distribution.Buckets) != 1 {
		t.Fatalf("expected a single bucket when min == max, got %d buckets", len(result.Distribution.Buckets))
	}
	if result.Distribution.Buckets[0].PriceCenter != 10.0 {
		t.Fatalf("expected the single bucket centered at 10.0, got %v", result.Distribution.Buckets[0].PriceCenter)
	}
	if result.Distribution.Buckets[0].Volume != 300 {
		t.Fatalf("expected combined volume 300, got %v", result.Distribution.Buckets[0].Volume)
	}
}

// Two equal-volume buckets: the tie must resolve to the lower price.
func TestAnalyze_PeakTieBreaksToLowerPrice(t *testing.T) {
	ticks := []types.Tick{
		mkTick(0, 1000),
		mkTick(2, 1000),
	}
	params := DefaultParams()
	params.PriceBins = 2
	result := Analyze(ticks, 0, params)
	if !result.HasPeak {
		t.Fatalf("expected a peak")
	}
	if result.PeakPrice >= 1.0 {
		t.Fatalf("expected the tie to resolve to the lower-price bucket, got %v", result.PeakPrice)
	}
}
