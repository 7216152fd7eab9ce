package replay

import (
	"testing"
	"time"

	"capflow/core/types"
)

func TestArchive_AppendAndLoadPreservesOrder(t *testing.T) {
	a, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error opening archive: %v", err)
	}
	defer a.Close()

	base := time.Now()
	ticks := []types.Tick{
		{Symbol: "BBCA", Timestamp: base, Price: 10.00, Volume: 100, Amount: 1000, Direction: types.DirectionBuy},
		{Symbol: "BBCA", Timestamp: base.Add(time.Second), Price: 10.05, Volume: 200, Amount: 2010,
			Direction: types.DirectionSell,
			Quote:     types.Quote{BidPrice: 10.00, AskPrice: 10.05, Present: true}},
	}
	for _, tick := range ticks {
		if err := a.Append(tick); err != nil {
			t.Fatalf("unexpected error appending tick: %v", err)
		}
	}

	loaded, err := a.Load("BBCA")
	if err != nil {
		t.Fatalf("unexpected error loading ticks: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(loaded))
	}
	if loaded[0].Price != 10.00 || loaded[1].Price != 10.05 {
		t.Fatalf("expected ticks in timestamp order, got %+v", loaded)
	}
	if !loaded[1].Quote.Present || loaded[1].Quote.AskPrice != 10.05 {
		t.Fatalf("expected quote to round-trip, got %+v", loaded[1].Quote)
	}
}

func TestArchive_LoadUnknownSymbolReturnsEmpty(t *testing.T) {
	a, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	loaded, err := a.Load("UNKNOWN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no ticks for unknown symbol, got %d", len(loaded))
	}
}
