package synthetic

import (
	"testing"
	"time"

	"capflow/core/types"
)

func mkTick(t time.Time, price, volume, amount float64, dir types.Direction) types.Tick {
	return types.Tick{Timestamp: t, Symbol: "BBCA", Price: price, Volume: volume, Amount: amount, Direction: dir}
}

func TestBuilder_SingleLargeAggressiveBuy(t *testing.T) {
	b := New("BBCA", DefaultParams())
	base := time.Now()
	orders := b.Feed(mkTick(base, 10.00, 20000, 200000, types.DirectionBuy), types.LabelAggBuy)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	o := orders[0]
	if o.OrderType != types.OrderTypeOriginal || o.Direction != types.OrderBuy {
		t.Fatalf("unexpected order: %+v", o)
	}
	if o.VWAP() != 10.00 {
		t.Fatalf("expected vwap 10.00, got %v", o.VWAP())
	}
}

func TestBuilder_TWAPSplit(t *testing.T) {
	b := New("BBCA", DefaultParams())
	base := time.Now()
	var emitted []types.SyntheticOrder
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		emitted = append(emitted, b.Feed(mkTick(ts, 10.00, 2500, 125000, types.DirectionBuy), types.LabelAggBuy)...)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected exactly one emission across the feed sequence, got %d orders", len(emitted))
	}
	o := emitted[0]
	if o.OrderType != types.OrderTypeAlgoTWAP {
		t.Fatalf("expected ALGO_TWAP, got %s", o.OrderType)
	}
	if o.Confidence != 1.3 {
		t.Fatalf("expected confidence 1.3, got %v", o.Confidence)
	}
	if o.VWAP() != 10.00 {
		t.Fatalf("expected vwap 10.00, got %v", o.VWAP())
	}
}

func TestBuilder_WindowEviction(t *testing.T) {
	b := New("BBCA", DefaultParams())
	base := time.Now()

	orders := b.Feed(mkTick(base, 10.00, 30000, 300000, types.DirectionBuy), types.LabelAggBuy)
	if len(orders) != 0 {
		t.Fatalf("expected no emission on first tick, got %d", len(orders))
	}

	orders = b.Feed(mkTick(base.Add(40*time.Second), 10.00, 30000, 300000, types.DirectionBuy), types.LabelAggBuy)
	if len(orders) != 0 {
		t.Fatalf("expected no emission after eviction, got %d", len(orders))
	}

	flushed := b.Flush()
	if len(flushed) != 0 {
		t.Fatalf("expected flush to discard sub-threshold remnants, got %d", len(flushed))
	}
}

func TestBuilder_FlushDiscardsSubThresholdRemnant(t *testing.T) {
	b := New("BBCA", DefaultParams())
	base := time.Now()
	b.Feed(mkTick(base, 10.00, 10000, 100000, types.DirectionBuy), types.LabelSmallBuy)
	flushed := b.Flush()
	if len(flushed) != 0 {
		t.Fatalf("expected no emission for sub-threshold remnant, got %d", len(flushed))
	}
}

func TestBuilder_NoiseIgnored(t *testing.T) {
	b := New("BBCA", DefaultParams())
	orders := b.Feed(mkTick(time.Now(), 10.00, 20000, 900000, types.DirectionNeutral), types.LabelNoise)
	if len(orders) != 0 {
		t.Fatalf("expected noise tick to be ignored, got %d orders", len(orders))
	}
	if len(b.buy) != 0 || len(b.sell) != 0 {
		t.Fatalf("expected no buffer growth from noise tick")
	}
}

func TestBuilder_ReplayDeterminism(t *testing.T) {
	base := time.Now()
	ticks := []struct {
		offset time.Duration
		label  types.Label
	}{
		{0, types.LabelAggBuy},
		{1 * time.Second, types.LabelAggBuy},
		{2 * time.Second, types.LabelAggBuy},
	}

	run := func() []types.SyntheticOrder {
		b := New("BBCA", DefaultParams())
		var all []types.SyntheticOrder
		for _, tk := range ticks {
			all = append(all, b.Feed(mkTick(base.Add(tk.offset), 10, 20000, 250000, types.DirectionBuy), tk.label)...)
		}
		all = append(all, b.Flush()...)
		return all
	}

	a := run()
	c := run()
	if len(a) != len(c) {
		t.Fatalf("non-deterministic replay: %d vs %d orders", len(a), len(c))
	}
	for i := range a {
		if a[i].TotalAmount != c[i].TotalAmount || a[i].OrderType != c[i].OrderType {
			t.Fatalf("non-deterministic replay at index %d", i)
		}
	}
}
