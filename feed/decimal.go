package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"capflow/core/types"
)

// WireTick is the JSON frame shape coming off the live feed and replay
// files. Price/volume/amount/quote fields arrive as decimal strings —
// exact precision matters for currency amounts, so they're parsed with
// shopspring/decimal before ever touching the core pipeline's float64s.
type WireTick struct {
	Timestamp    time.Time `json:"ts"`
	Symbol       string    `json:"symbol"`
	Price        string    `json:"price"`
	Volume       string    `json:"volume"`
	Amount       string    `json:"amount"`
	Direction    string    `json:"direction"`
	BidPrice     string    `json:"bid_price,omitempty"`
	BidVolume    string    `json:"bid_volume,omitempty"`
	AskPrice     string    `json:"ask_price,omitempty"`
	AskVolume    string    `json:"ask_volume,omitempty"`
	QuotePresent bool      `json:"quote_present"`
}

// DecodeWireTick parses a JSON frame into a types.Tick, converting every
// decimal-string field through shopspring/decimal so parse errors surface
// before the core pipeline ever sees a malformed amount.
func DecodeWireTick(data []byte) (types.Tick, error) {
	var wire WireTick
	if err := json.Unmarshal(data, &wire); err != nil {
		return types.Tick{}, fmt.Errorf("DecodeWireTick: %w", err)
	}
	return wire.ToTick()
}

// ToTick converts the wire representation to the core Tick type.
func (w WireTick) ToTick() (types.Tick, error) {
	price, err := parseDecimal(w.Price)
	if err != nil {
		return types.Tick{}, fmt.Errorf("ToTick: price: %w", err)
	}
	volume, err := parseDecimal(w.Volume)
	if err != nil {
		return types.Tick{}, fmt.Errorf("ToTick: volume: %w", err)
	}
	amount, err := parseDecimal(w.Amount)
	if err != nil {
		return types.Tick{}, fmt.Errorf("ToTick: amount: %w", err)
	}

	tick := types.Tick{
		Timestamp: w.Timestamp,
		Symbol:    w.Symbol,
		Price:     price,
		Volume:    volume,
		Amount:    amount,
		Direction: directionFrom(w.Direction),
	}

	if w.QuotePresent {
		quote, err := w.toQuote()
		if err != nil {
			return types.Tick{}, fmt.Errorf("ToTick: quote: %w", err)
		}
		tick.Quote = quote
	}

	return tick, nil
}

func (w WireTick) toQuote() (types.Quote, error) {
	bidPrice, err := parseDecimalOrZero(w.BidPrice)
	if err != nil {
		return types.Quote{}, err
	}
	bidVolume, err := parseDecimalOrZero(w.BidVolume)
	if err != nil {
		return types.Quote{}, err
	}
	askPrice, err := parseDecimalOrZero(w.AskPrice)
	if err != nil {
		return types.Quote{}, err
	}
	askVolume, err := parseDecimalOrZero(w.AskVolume)
	if err != nil {
		return types.Quote{}, err
	}
	return types.Quote{
		BidPrice:  bidPrice,
		BidVolume: bidVolume,
		AskPrice:  askPrice,
		AskVolume: askVolume,
		Present:   true,
	}, nil
}

func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func parseDecimalOrZero(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return parseDecimal(s)
}

func directionFrom(s string) types.Direction {
	switch s {
	case "B", "BUY":
		return types.DirectionBuy
	case "S", "SELL":
		return types.DirectionSell
	case "N", "NEUTRAL":
		return types.DirectionNeutral
	default:
		return types.DirectionUnknown
	}
}
