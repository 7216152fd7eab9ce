package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	models "capflow/database/models_pkg"
)

// BulkLoader ingests ticks through a direct database/sql connection using
// PostgreSQL's COPY protocol (lib/pq), for replay/backtest loads where GORM's
// row-at-a-time insert path is too slow.
type BulkLoader struct {
	sqlDB *sql.DB
}

// NewBulkLoader wraps the connection's underlying *sql.DB.
func NewBulkLoader(d *Database) (*BulkLoader, error) {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil, fmt.Errorf("NewBulkLoader: %w", err)
	}
	return &BulkLoader{sqlDB: sqlDB}, nil
}

// CopyInTicks streams ticks into the ticks table via COPY, far faster than
// per-row INSERTs for a full day's replay.
func (b *BulkLoader) CopyInTicks(ticks []models.TickRecord) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := b.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("CopyInTicks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn("ticks",
		"symbol", "timestamp", "price", "volume", "amount", "direction",
		"bid_price", "bid_volume", "ask_price", "ask_volume", "quote_present",
	))
	if err != nil {
		return fmt.Errorf("CopyInTicks: %w", err)
	}

	for _, t := range ticks {
		if _, err := stmt.Exec(
			t.Symbol, t.Timestamp, t.Price, t.Volume, t.Amount, t.Direction,
			t.BidPrice, t.BidVolume, t.AskPrice, t.AskVolume, t.QuotePresent,
		); err != nil {
			return fmt.Errorf("CopyInTicks: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("CopyInTicks: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("CopyInTicks: %w", err)
	}
	return tx.Commit()
}
