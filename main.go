package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"capflow/app"
	"capflow/config"
	"capflow/core/types"
	"capflow/feed"
)

// usage: capflow run_daily_analysis [date] [tick files...]
//
// date defaults to today (YYYY-MM-DD). Any trailing arguments name
// newline-delimited JSON tick files (feed.WireTick framing, one per line);
// each tick's own symbol field routes it to that symbol's session. Exit
// code 0 on success, non-zero on a configuration error or total data
// unavailability; a single symbol's failure is logged but does not fail
// the run (§6).
func main() {
	if len(os.Args) < 2 || os.Args[1] != "run_daily_analysis" {
		fmt.Fprintln(os.Stderr, "usage: capflow run_daily_analysis [date] [tick files...]")
		os.Exit(2)
	}

	date := time.Now()
	fileArgs := os.Args[2:]
	if len(fileArgs) > 0 {
		if parsed, err := time.Parse("2006-01-02", fileArgs[0]); err == nil {
			date = parsed
			fileArgs = fileArgs[1:]
		}
	}

	secrets := config.LoadSecrets()
	params, err := config.LoadPipelineParams(os.Getenv("CAPFLOW_CONFIG"))
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}

	symbolTicks, err := loadTickFiles(fileArgs)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}
	if len(symbolTicks) == 0 {
		log.Println("no tick data available for any symbol")
		os.Exit(1)
	}

	application := app.New(secrets, params)
	if err := application.Connect(); err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	results, err := application.RunDaily(ctx, date, symbolTicks)
	if err != nil {
		log.Printf("run failed: %v", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		log.Println("every symbol's session failed, nothing to report")
		os.Exit(1)
	}

	for _, result := range results {
		log.Printf("✅ %s %s: weighted_cost=%.2f net_flow=%.4f validation=%s",
			result.Symbol, result.Date.Format("2006-01-02"),
			result.WeightedCost, result.NetFlow, result.ValidationStatus)
	}

	if len(results) < len(symbolTicks) {
		log.Printf("⚠️  %d of %d symbols failed, see earlier log lines", len(symbolTicks)-len(results), len(symbolTicks))
	}
}

// loadTickFiles reads every file's newline-delimited WireTick frames and
// groups the decoded ticks by symbol. A single malformed file is reported
// and skipped rather than aborting the whole run.
func loadTickFiles(paths []string) (map[string][]types.Tick, error) {
	symbolTicks := make(map[string][]types.Tick)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("⚠️  skipping %s: %v", path, err)
			continue
		}

		reader := feed.NewFileReader(f)
		for {
			wire, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Printf("⚠️  skipping rest of %s: %v", path, err)
				break
			}
			tick, err := wire.ToTick()
			if err != nil {
				log.Printf("⚠️  skipping malformed tick in %s: %v", path, err)
				continue
			}
			symbolTicks[tick.Symbol] = append(symbolTicks[tick.Symbol], tick)
		}
		f.Close()
	}

	return symbolTicks, nil
}
