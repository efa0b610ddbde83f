// Command backtest replays archived station data through the prediction model
// and reports per-day accuracy against what the site station actually
// recorded.
//
// Usage:
//
//	go run ./cmd/backtest -days 14
//	go run ./cmd/backtest -start 2026-07-01 -end 2026-07-14
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inletlabs/kitecast/internal/adapter/openmeteo"
	"github.com/inletlabs/kitecast/internal/config"
	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
	"github.com/inletlabs/kitecast/internal/pipeline"
)

func main() {
	days := flag.Int("days", 7, "number of past days to score (ending yesterday)")
	start := flag.String("start", "", "range start date (YYYY-MM-DD, overrides -days)")
	end := flag.String("end", "", "range end date (YYYY-MM-DD, requires -start)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, "text")

	dates, err := resolveRange(*days, *start, *end, cfg.Location())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, logger, dates))
}

func run(cfg *config.Config, logger *slog.Logger, dates domain.DateRange) int {
	metrics := observability.NewMetrics()
	loc := cfg.Location()

	siteClient := openmeteo.NewClient("site", cfg.ForecastBaseURL, cfg.ArchiveBaseURL,
		loc, cfg.FetchTimeout, metrics, logger)
	refClient := openmeteo.NewClient("reference", cfg.ForecastBaseURL, cfg.ArchiveBaseURL,
		loc, cfg.FetchTimeout, metrics, logger)

	backtester := pipeline.NewBacktester(siteClient, refClient, pipeline.ForecasterConfig{
		Site: pipeline.Site{
			Name:     cfg.SiteName,
			Lat:      cfg.SiteLat,
			Lon:      cfg.SiteLon,
			Timezone: cfg.Timezone,
		},
		RefLat: cfg.RefLat,
		RefLon: cfg.RefLon,
		Model:  cfg.ModelConfig(),
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reports, err := backtester.Run(ctx, dates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: backtest failed: %v\n", err)
		return 1
	}

	fmt.Printf("=== Backtest: %s (%s to %s) ===\n\n",
		cfg.SiteName, dates.Start.Format("2006-01-02"), dates.End.Format("2006-01-02"))

	var accurate int
	var maeSum float64
	for _, r := range reports {
		status := "\033[32mACCURATE\033[0m"
		if !r.Accurate {
			status = "\033[31mMISSED\033[0m"
		} else {
			accurate++
		}
		maeSum += r.MAE
		fmt.Printf("  %s  MAE %5.2f kn  (%2d kiteable hours)  %s\n",
			r.Date.Format("2006-01-02"), r.MAE, len(r.Residuals), status)
	}

	fmt.Println()
	if len(reports) == 0 {
		fmt.Println("No days scored.")
		return 0
	}

	fmt.Printf("Days: %d  Accurate: %d (%.0f%%)  Mean MAE: %.2f kn (threshold %.1f)\n",
		len(reports), accurate,
		100*float64(accurate)/float64(len(reports)),
		maeSum/float64(len(reports)), cfg.AccuracyMAEKn)

	if accurate < len(reports) {
		return 1
	}
	return 0
}

func resolveRange(days int, start, end string, loc *time.Location) (domain.DateRange, error) {
	if start == "" {
		if days < 1 {
			return domain.DateRange{}, fmt.Errorf("-days must be at least 1")
		}
		return pipeline.LastNDays(days, time.Now(), loc), nil
	}

	startDate, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("parse -start: %w", err)
	}
	endDate := startDate
	if end != "" {
		endDate, err = time.ParseInLocation("2006-01-02", end, loc)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("parse -end: %w", err)
		}
	}
	if endDate.Before(startDate) {
		return domain.DateRange{}, fmt.Errorf("-end is before -start")
	}
	return domain.DateRange{Start: startDate, End: endDate}, nil
}
