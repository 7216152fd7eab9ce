// Package app is the composition root: it wires configuration, storage,
// cache, notifications and the core pipeline together, and fans a batch
// run out across symbols in parallel (§5 — sessions are independent and
// safe to run concurrently; only within one symbol must ticks be fed in
// order).
package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"capflow/cache"
	"capflow/config"
	"capflow/core/session"
	"capflow/core/types"
	"capflow/database"
	models "capflow/database/models_pkg"
	"capflow/metrics"
	"capflow/notifications"
	"capflow/realtime"
)

// App holds every long-lived dependency a batch run needs.
type App struct {
	secrets *config.Secrets
	params  session.Params

	db       *database.Database
	repo     *database.Repository
	redis    *cache.RedisClient
	history  *cache.CostHistory
	lastSeen *cache.LastResult
	webhook  *notifications.WebhookManager
	broker   *realtime.Broker
}

// New creates an App. Call Connect before RunDaily.
func New(secrets *config.Secrets, params session.Params) *App {
	return &App{
		secrets: secrets,
		params:  params,
		webhook: notifications.NewWebhookManager(secrets.WebhookURL, secrets.WebhookSecret),
		broker:  realtime.NewBroker(),
	}
}

// Connect opens the database and cache connections.
func (a *App) Connect() error {
	log.Println("🗄️  connecting to database...")
	port, err := strconv.Atoi(a.secrets.DatabasePort)
	if err != nil {
		return fmt.Errorf("Connect: invalid database port: %w", err)
	}

	db, err := database.Connect(a.secrets.DatabaseHost, port, a.secrets.DatabaseName, a.secrets.DatabaseUser, a.secrets.DatabasePassword)
	if err != nil {
		return fmt.Errorf("Connect: database connection failed: %w", err)
	}
	a.db = db
	a.repo = database.NewRepository(db.DB())

	log.Println("🧠 connecting to Redis...")
	redisClient := cache.NewRedisClient(a.secrets.RedisHost, a.secrets.RedisPort, a.secrets.RedisPassword)
	if redisClient == nil {
		log.Println("⚠️  Redis connection failed, caching disabled")
	}
	a.redis = redisClient
	a.history = cache.NewCostHistory(redisClient)
	a.lastSeen = cache.NewLastResult(redisClient)

	go a.broker.Run()

	return nil
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}
}

// RunDaily runs one session per (symbol, date) in parallel and persists
// each result as it completes. A single symbol's failure is logged and
// excluded from the returned results rather than aborting the whole batch
// (§6 — partial per-symbol failures are not fatal).
func (a *App) RunDaily(ctx context.Context, date time.Time, symbolTicks map[string][]types.Tick) ([]types.DayResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]types.DayResult, len(symbolTicks))
	symbols := make([]string, 0, len(symbolTicks))
	for symbol := range symbolTicks {
		symbols = append(symbols, symbol)
	}

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			result, err := a.runSymbol(gctx, symbol, date, symbolTicks[symbol])
			if err != nil {
				log.Printf("⚠️  session for %s failed: %v", symbol, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("RunDaily: %w", err)
	}

	out := make([]types.DayResult, 0, len(results))
	for _, r := range results {
		if r.Symbol != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (a *App) runSymbol(ctx context.Context, symbol string, date time.Time, ticks []types.Tick) (types.DayResult, error) {
	start := time.Now()
	defer func() {
		metrics.SessionDuration.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
	}()

	history, ok := a.history.Get(ctx, symbol)
	if !ok {
		var err error
		history, err = a.repo.GetDailyCostHistory(symbol, 20)
		if err != nil {
			log.Printf("⚠️  cost history lookup failed for %s: %v", symbol, err)
		}
	}

	driver := session.New(symbol, date, a.params)
	for _, tick := range ticks {
		driver.Feed(tick)
	}
	result := driver.Finish(history)

	metrics.NoiseTicks.WithLabelValues(symbol).Add(float64(result.NoiseTickCount))
	metrics.MissingQuote.WithLabelValues(symbol).Add(float64(result.MissingQuoteCount))
	metrics.AmountMismatch.WithLabelValues(symbol).Add(float64(result.AmountMismatchCount))
	if result.ValidationStatus == types.ValidationInvalid {
		metrics.ValidationStatus.WithLabelValues(symbol).Set(1)
	} else {
		metrics.ValidationStatus.WithLabelValues(symbol).Set(0)
	}

	record := toDayResultRecord(result)
	if err := a.repo.SaveDayResult(&record, result.CostMA) ; err != nil {
		return types.DayResult{}, fmt.Errorf("runSymbol: %w", err)
	}

	_ = a.history.Set(ctx, symbol, append([]float64{result.WeightedCost}, history...))
	_ = a.lastSeen.Set(ctx, result)

	a.broker.Broadcast("day_result", result)

	if result.ValidationStatus == types.ValidationInvalid {
		a.webhook.SendValidationAlert(ctx, result)
	}

	return result, nil
}

func toDayResultRecord(r types.DayResult) models.DayResultRecord {
	return models.DayResultRecord{
		RunID:  r.RunID,
		Symbol: r.Symbol,
		Date:   r.Date,

		AggressiveBuyAmount:  r.AggressiveBuyAmount,
		AggressiveSellAmount: r.AggressiveSellAmount,
		DefensiveBuyAmount:   r.DefensiveBuyAmount,
		DefensiveSellAmount:  r.DefensiveSellAmount,
		AlgoBuyAmount:        r.AlgoBuyAmount,

		WeightedCost: r.WeightedCost,
		NetFlow:      r.NetFlow,
		NetFlowRaw:   r.NetFlowRaw,

		ConcentrationRatio: r.ConcentrationRatio,
		ChipPeakPrice:      r.ChipPeakPrice,
		HasChipPeak:        r.HasChipPeak,
		SupportPrice:       r.SupportPrice,
		HasSupport:         r.HasSupport,
		ResistancePrice:    r.ResistancePrice,
		HasResistance:      r.HasResistance,

		ValidationStatus: string(r.ValidationStatus),

		NoiseTickCount:      r.NoiseTickCount,
		MissingQuoteCount:   r.MissingQuoteCount,
		AmountMismatchCount: r.AmountMismatchCount,
	}
}
