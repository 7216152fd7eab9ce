package cache

import (
	"context"
	"fmt"
	"time"

	"capflow/core/types"
)

// historyTTL covers a few trading days of cached state; the database
// remains the durable source of truth (§9).
const historyTTL = 72 * time.Hour

// CostHistory caches a symbol's recent weighted_cost values, the input the
// Calculator needs for its moving averages (§4.3), avoiding a database
// round trip on every session run.
type CostHistory struct {
	redis *RedisClient
}

// NewCostHistory wraps a RedisClient. redis may be nil; every method then
// degrades to a cache miss instead of failing the caller.
func NewCostHistory(redis *RedisClient) *CostHistory {
	return &CostHistory{redis: redis}
}

// Get returns the cached history for symbol, or ok=false on a miss (or a
// disconnected cache).
func (c *CostHistory) Get(ctx context.Context, symbol string) (history []float64, ok bool) {
	if c.redis == nil {
		return nil, false
	}
	var values []float64
	if err := c.redis.Get(ctx, historyKey(symbol), &values); err != nil {
		return nil, false
	}
	return values, true
}

// Set stores history for symbol. Errors are swallowed by the caller's
// choice — the cache is an optimization, never load-bearing (§7).
func (c *CostHistory) Set(ctx context.Context, symbol string, history []float64) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Set(ctx, historyKey(symbol), history, historyTTL)
}

// LastResult caches a symbol's most recent DayResult for dashboards that
// want the latest number without a database query.
type LastResult struct {
	redis *RedisClient
}

// NewLastResult wraps a RedisClient.
func NewLastResult(redis *RedisClient) *LastResult {
	return &LastResult{redis: redis}
}

// Get returns the cached last DayResult for symbol.
func (l *LastResult) Get(ctx context.Context, symbol string) (result types.DayResult, ok bool) {
	if l.redis == nil {
		return types.DayResult{}, false
	}
	if err := l.redis.Get(ctx, lastResultKey(symbol), &result); err != nil {
		return types.DayResult{}, false
	}
	return result, true
}

// Set stores the given DayResult as the symbol's latest.
func (l *LastResult) Set(ctx context.Context, result types.DayResult) error {
	if l.redis == nil {
		return nil
	}
	return l.redis.Set(ctx, lastResultKey(result.Symbol), result, historyTTL)
}

func historyKey(symbol string) string {
	return fmt.Sprintf("capflow:cost_history:%s", symbol)
}

func lastResultKey(symbol string) string {
	return fmt.Sprintf("capflow:last_result:%s", symbol)
}
