package feed

import (
	"testing"

	"capflow/core/types"
)

func TestDecodeWireTick_ParsesDecimalFields(t *testing.T) {
	data := []byte(`{"ts":"2026-07-31T09:00:00Z","symbol":"BBCA","price":"10000.50","volume":"20000","amount":"200010000","direction":"B","bid_price":"9999.00","ask_price":"10001.00","quote_present":true}`)
	tick, err := DecodeWireTick(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Symbol != "BBCA" {
		t.Fatalf("expected symbol BBCA, got %s", tick.Symbol)
	}
	if tick.Price != 10000.50 {
		t.Fatalf("expected price 10000.50, got %v", tick.Price)
	}
	if tick.Direction != types.DirectionBuy {
		t.Fatalf("expected direction Buy, got %v", tick.Direction)
	}
	if !tick.Quote.Present || tick.Quote.BidPrice != 9999.00 {
		t.Fatalf("expected quote present with bid 9999.00, got %+v", tick.Quote)
	}
}

func TestDecodeWireTick_RejectsMalformedDecimal(t *testing.T) {
	data := []byte(`{"ts":"2026-07-31T09:00:00Z","symbol":"BBCA","price":"not-a-number","volume":"1","amount":"1","direction":"B"}`)
	if _, err := DecodeWireTick(data); err == nil {
		t.Fatalf("expected an error for a malformed decimal price")
	}
}

func TestDecodeWireTick_NoQuoteWhenAbsent(t *testing.T) {
	data := []byte(`{"ts":"2026-07-31T09:00:00Z","symbol":"BBCA","price":"10","volume":"1","amount":"10","direction":"S","quote_present":false}`)
	tick, err := DecodeWireTick(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Quote.Present {
		t.Fatalf("expected quote not present")
	}
}
