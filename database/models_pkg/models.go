// Package models_pkg holds the persisted GORM models, kept in their own
// package so the database package and the core pipeline package can both
// depend on them without importing each other.
package models_pkg

import "time"

// TickRecord is one persisted trade print, the raw input the classifier
// consumes (§6 tick input contract).
type TickRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"index:idx_tick_symbol_ts;size:16;not null"`
	Timestamp time.Time `gorm:"index:idx_tick_symbol_ts;not null"`
	Price     float64   `gorm:"not null"`
	Volume    float64   `gorm:"not null"`
	Amount    float64   `gorm:"not null"`
	Direction string    `gorm:"size:8"`

	BidPrice     float64
	BidVolume    float64
	AskPrice     float64
	AskVolume    float64
	QuotePresent bool

	CreatedAt time.Time
}

func (TickRecord) TableName() string {
	return "ticks"
}

// SyntheticOrderRecord persists one builder-emitted synthetic order.
type SyntheticOrderRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Symbol      string    `gorm:"index:idx_order_symbol_date;size:16;not null"`
	Date        time.Time `gorm:"index:idx_order_symbol_date;not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     time.Time `gorm:"not null"`
	Direction   string    `gorm:"size:8;not null"`
	TotalVolume float64   `gorm:"not null"`
	TotalAmount float64   `gorm:"not null"`
	TickCount   int       `gorm:"not null"`
	OrderType   string    `gorm:"size:16;not null"`
	Confidence  float64   `gorm:"not null"`

	CreatedAt time.Time
}

func (SyntheticOrderRecord) TableName() string {
	return "synthetic_orders"
}

// DayResultRecord persists one (symbol, date) session's full result, the
// unit cross-day history is rebuilt from (§9 — sessions never carry state
// themselves, only the persisted history feeds the next day's moving
// averages).
type DayResultRecord struct {
	RunID  string    `gorm:"primaryKey;size:36"`
	Symbol string    `gorm:"uniqueIndex:idx_result_symbol_date;size:16;not null"`
	Date   time.Time `gorm:"uniqueIndex:idx_result_symbol_date;not null"`

	AggressiveBuyAmount  float64
	AggressiveSellAmount float64
	DefensiveBuyAmount   float64
	DefensiveSellAmount  float64
	AlgoBuyAmount        float64

	WeightedCost float64
	NetFlow      float64
	NetFlowRaw   bool

	ConcentrationRatio float64
	ChipPeakPrice      float64
	HasChipPeak        bool
	SupportPrice       float64
	HasSupport         bool
	ResistancePrice    float64
	HasResistance      bool

	ValidationStatus string `gorm:"size:16"`

	NoiseTickCount      int
	MissingQuoteCount   int
	AmountMismatchCount int

	CreatedAt time.Time
}

func (DayResultRecord) TableName() string {
	return "day_results"
}

// CostMAPoint persists one (run, period) moving-average value, kept in a
// separate table rather than a JSON column so it stays queryable by period.
type CostMAPoint struct {
	RunID  string `gorm:"primaryKey;size:36"`
	Period int    `gorm:"primaryKey"`
	Value  float64
}

func (CostMAPoint) TableName() string {
	return "cost_ma_points"
}
