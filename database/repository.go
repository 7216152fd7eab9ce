package database

import (
	"fmt"
	"time"

	models "capflow/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles persistence for ticks, synthetic orders and day
// results.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository over an open connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveTick persists a single tick. Prefer SaveTicks for bulk ingestion.
func (r *Repository) SaveTick(tick *models.TickRecord) error {
	if err := r.db.Create(tick).Error; err != nil {
		return fmt.Errorf("SaveTick: %w", err)
	}
	return nil
}

// SaveTicks persists a batch of ticks, up to 500 rows per INSERT statement.
func (r *Repository) SaveTicks(ticks []models.TickRecord) error {
	if len(ticks) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(ticks, 500).Error; err != nil {
		return fmt.Errorf("SaveTicks: %w", err)
	}
	return nil
}

// GetTicksByRange retrieves one symbol's ticks within [start, end], ordered
// by timestamp — the order the Session Driver requires (§5).
func (r *Repository) GetTicksByRange(symbol string, start, end time.Time) ([]models.TickRecord, error) {
	var ticks []models.TickRecord
	query := r.db.Order("timestamp ASC").Where("symbol = ?", symbol)

	if !start.IsZero() {
		query = query.Where("timestamp >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("timestamp <= ?", end)
	}

	if err := query.Find(&ticks).Error; err != nil {
		return nil, fmt.Errorf("GetTicksByRange: %w", err)
	}
	return ticks, nil
}

// SaveDayResult persists one session's result and its moving-average
// points in a single transaction.
func (r *Repository) SaveDayResult(result *models.DayResultRecord, costMA map[int]float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("SaveDayResult: %w", err)
		}
		points := make([]models.CostMAPoint, 0, len(costMA))
		for period, value := range costMA {
			points = append(points, models.CostMAPoint{RunID: result.RunID, Period: period, Value: value})
		}
		if len(points) > 0 {
			if err := tx.Create(&points).Error; err != nil {
				return fmt.Errorf("SaveDayResult: %w", err)
			}
		}
		return nil
	})
}

// SaveSyntheticOrders persists a session's emitted synthetic orders.
func (r *Repository) SaveSyntheticOrders(orders []models.SyntheticOrderRecord) error {
	if len(orders) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(orders, 500).Error; err != nil {
		return fmt.Errorf("SaveSyntheticOrders: %w", err)
	}
	return nil
}

// GetDailyCostHistory returns the most recent N weighted_cost values for a
// symbol, most recent first — the cross-day input the Calculator needs to
// compute moving averages (§4.3, §9).
func (r *Repository) GetDailyCostHistory(symbol string, limit int) ([]float64, error) {
	var results []models.DayResultRecord
	query := r.db.Order("date DESC").Where("symbol = ?", symbol)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("GetDailyCostHistory: %w", err)
	}

	history := make([]float64, len(results))
	for i, r := range results {
		history[i] = r.WeightedCost
	}
	return history, nil
}

// GetDayResult retrieves one (symbol, date) result, or nil if none exists.
func (r *Repository) GetDayResult(symbol string, date time.Time) (*models.DayResultRecord, error) {
	var result models.DayResultRecord
	err := r.db.Where("symbol = ? AND date = ?", symbol, date).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDayResult: %w", err)
	}
	return &result, nil
}
