package classifier

import (
	"testing"
	"time"

	"capflow/core/types"
)

func defaultThresholds() Thresholds {
	return Thresholds{BigOrderThreshold: 100000, WallThreshold: 10000}
}

func TestClassify_SmallPrint(t *testing.T) {
	tick := types.Tick{
		Timestamp: time.Now(),
		Price:     10, Volume: 10, Amount: 100,
		Direction: types.DirectionBuy,
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelSmallBuy || weight != 0 {
		t.Fatalf("got (%s, %v), want (SMALL_BUY, 0)", label, weight)
	}
}

func TestClassify_AggressiveBuyCrossesAsk(t *testing.T) {
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 9.98, AskPrice: 9.99, Present: true},
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelAggBuy || weight != 1.5 {
		t.Fatalf("got (%s, %v), want (AGG_BUY, 1.5)", label, weight)
	}
}

func TestClassify_DefensiveBuyWall(t *testing.T) {
	tick := types.Tick{
		Price: 9.99, Volume: 100000, Amount: 999000,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 9.99, BidVolume: 50000, AskPrice: 10.01, Present: true},
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelDefBuy || weight != 0.8 {
		t.Fatalf("got (%s, %v), want (DEF_BUY, 0.8)", label, weight)
	}
}

func TestClassify_AggressiveSellCrossesBid(t *testing.T) {
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionSell,
		Quote:     types.Quote{BidPrice: 10.00, AskPrice: 10.02, Present: true},
	}
	label, _ := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelAggSell {
		t.Fatalf("got %s, want AGG_SELL", label)
	}
}

func TestClassify_NeutralLargeIsNoise(t *testing.T) {
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionNeutral,
		Quote:     types.Quote{BidPrice: 9.99, AskPrice: 10.01, Present: true},
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelNoise || weight != 0 {
		t.Fatalf("got (%s, %v), want (NOISE, 0)", label, weight)
	}
}

func TestClassify_SmallPrintWithMissingQuoteStaysSmall(t *testing.T) {
	var counters QualityCounters
	tick := types.Tick{
		Price: 10, Volume: 10, Amount: 100,
		Direction: types.DirectionBuy,
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), &counters)
	if label != types.LabelSmallBuy || weight != 0 {
		t.Fatalf("got (%s, %v), want (SMALL_BUY, 0) — amount threshold must be checked before the quote fallback", label, weight)
	}
	if counters.MissingQuote != 0 {
		t.Fatalf("expected MissingQuote not to increment for a small print, got %d", counters.MissingQuote)
	}
}

func TestClassify_MissingQuoteFallsBackToDirection(t *testing.T) {
	var counters QualityCounters
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionBuy,
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), &counters)
	if label != types.LabelAggBuy || weight != 1.5 {
		t.Fatalf("got (%s, %v), want (AGG_BUY, 1.5)", label, weight)
	}
	if counters.MissingQuote != 1 {
		t.Fatalf("expected MissingQuote counter to increment, got %d", counters.MissingQuote)
	}
}

func TestClassify_MalformedTickIsNoise(t *testing.T) {
	var counters QualityCounters
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: -1,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 9.99, AskPrice: 10.01, Present: true},
	}
	label, weight := Classify(tick, defaultThresholds(), DefaultWeights(), &counters)
	if label != types.LabelNoise || weight != 0 {
		t.Fatalf("got (%s, %v), want (NOISE, 0)", label, weight)
	}
	if counters.Malformed != 1 {
		t.Fatalf("expected Malformed counter to increment, got %d", counters.Malformed)
	}
}

func TestClassify_InvertedQuoteIsMalformed(t *testing.T) {
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 10.05, AskPrice: 9.95, Present: true},
	}
	label, _ := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelNoise {
		t.Fatalf("got %s, want NOISE", label)
	}
}

func TestClassify_LockedMarketTieBreakIsDefensive(t *testing.T) {
	tick := types.Tick{
		Price: 10.00, Volume: 20000, Amount: 200000,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 10.00, AskPrice: 10.00, Present: true},
	}
	label, _ := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelDefBuy {
		t.Fatalf("got %s, want DEF_BUY", label)
	}
}

func TestClassify_DistanceTieBreak(t *testing.T) {
	// price closer to ask than bid, no crossing, no wall -> aggressive
	tick := types.Tick{
		Price: 10.005, Volume: 20000, Amount: 200000,
		Direction: types.DirectionBuy,
		Quote:     types.Quote{BidPrice: 9.99, AskPrice: 10.01, Present: true},
	}
	label, _ := Classify(tick, defaultThresholds(), DefaultWeights(), nil)
	if label != types.LabelAggBuy {
		t.Fatalf("got %s, want AGG_BUY", label)
	}
}
