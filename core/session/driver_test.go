package session

import (
	"testing"
	"time"

	"capflow/core/types"
)

func mkTick(ts time.Time, price, volume, amount float64, dir types.Direction, quote types.Quote) types.Tick {
	return types.Tick{Timestamp: ts, Symbol: "BBCA", Price: price, Volume: volume, Amount: amount, Direction: dir, Quote: quote}
}

func TestDriver_ProducesStampedDayResult(t *testing.T) {
	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	d := New("BBCA", date, DefaultParams())

	base := time.Now()
	d.Feed(mkTick(base, 10.00, 20000, 200000, types.DirectionBuy, types.Quote{BidPrice: 9.98, AskPrice: 9.99, Present: true}))

	result := d.Finish(nil)
	if result.RunID == "" {
		t.Fatalf("expected a stamped run ID")
	}
	if result.Symbol != "BBCA" {
		t.Fatalf("expected symbol BBCA, got %s", result.Symbol)
	}
	if !result.Date.Equal(date) {
		t.Fatalf("expected date %v, got %v", date, result.Date)
	}
}

func TestDriver_NoiseAndQualityCountersAccumulate(t *testing.T) {
	date := time.Now()
	d := New("BBCA", date, DefaultParams())

	// Malformed: negative amount.
	d.Feed(mkTick(date, 10.00, 20000, -1, types.DirectionBuy, types.Quote{BidPrice: 9.99, AskPrice: 10.01, Present: true}))
	// Missing quote.
	d.Feed(mkTick(date, 10.00, 20000, 200000, types.DirectionBuy, types.Quote{}))

	result := d.Finish(nil)
	if result.NoiseTickCount != 1 {
		t.Fatalf("expected 1 noise tick (malformed), got %d", result.NoiseTickCount)
	}
	if result.MissingQuoteCount != 1 {
		t.Fatalf("expected 1 missing-quote tick, got %d", result.MissingQuoteCount)
	}
}

func TestDriver_EmptySessionValidatesCleanly(t *testing.T) {
	d := New("BBCA", time.Now(), DefaultParams())
	result := d.Finish(nil)
	if result.ValidationStatus != types.ValidationValid {
		t.Fatalf("expected an empty session to validate as VALID, got %s", result.ValidationStatus)
	}
	if result.HasChipPeak {
		t.Fatalf("expected no chip peak for an empty session")
	}
}

func TestDriver_HistoryFeedsMovingAverage(t *testing.T) {
	d := New("BBCA", time.Now(), DefaultParams())
	d.Feed(mkTick(time.Now(), 10.00, 20000, 200000, types.DirectionBuy, types.Quote{BidPrice: 9.98, AskPrice: 9.99, Present: true}))

	result := d.Finish([]float64{8.0, 12.0})
	want := (result.WeightedCost + 8.0 + 12.0) / 3
	got := result.CostMA[5]
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected MA-5 %v, got %v", want, got)
	}
}
