// Package replay stores a symbol's ticks in an embedded, pure-Go SQLite
// database (modernc.org/sqlite, no cgo) so golden-output tests can replay a
// fixed session deterministically without standing up PostgreSQL.
package replay

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"capflow/core/types"
)

// Archive wraps a SQLite connection holding one or more symbols' tick
// history for replay.
type Archive struct {
	sql *sql.DB
}

// Open opens (or creates) the archive at path. Use ":memory:" for
// throwaway test fixtures.
func Open(path string) (*Archive, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("replay.Open: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("replay.Open: %w", err)
	}
	a := &Archive{sql: sqlDB}
	if err := a.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("replay.Open: %w", err)
	}
	return a, nil
}

// Close closes the underlying connection.
func (a *Archive) Close() error {
	return a.sql.Close()
}

func (a *Archive) migrate() error {
	_, err := a.sql.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			symbol TEXT NOT NULL,
			ts INTEGER NOT NULL,
			price REAL NOT NULL,
			volume REAL NOT NULL,
			amount REAL NOT NULL,
			direction INTEGER NOT NULL,
			bid_price REAL,
			bid_volume REAL,
			ask_price REAL,
			ask_volume REAL,
			quote_present INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ticks_symbol_ts ON ticks (symbol, ts);
	`)
	return err
}

// Append stores one tick for later replay.
func (a *Archive) Append(tick types.Tick) error {
	_, err := a.sql.Exec(
		`INSERT INTO ticks (symbol, ts, price, volume, amount, direction, bid_price, bid_volume, ask_price, ask_volume, quote_present)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tick.Symbol, tick.Timestamp.UnixNano(), tick.Price, tick.Volume, tick.Amount, int(tick.Direction),
		tick.Quote.BidPrice, tick.Quote.BidVolume, tick.Quote.AskPrice, tick.Quote.AskVolume, boolToInt(tick.Quote.Present),
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// Load returns one symbol's archived ticks in timestamp order, the order
// the Session Driver requires (§5).
func (a *Archive) Load(symbol string) ([]types.Tick, error) {
	rows, err := a.sql.Query(
		`SELECT ts, price, volume, amount, direction, bid_price, bid_volume, ask_price, ask_volume, quote_present
		 FROM ticks WHERE symbol = ? ORDER BY ts ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer rows.Close()

	var ticks []types.Tick
	for rows.Next() {
		var tsNano int64
		var direction int
		var present int
		tick := types.Tick{Symbol: symbol}
		if err := rows.Scan(&tsNano, &tick.Price, &tick.Volume, &tick.Amount, &direction,
			&tick.Quote.BidPrice, &tick.Quote.BidVolume, &tick.Quote.AskPrice, &tick.Quote.AskVolume, &present); err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		tick.Timestamp = time.Unix(0, tsNano)
		tick.Direction = types.Direction(direction)
		tick.Quote.Present = present != 0
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return ticks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
