package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/inletlabs/kitecast/internal/adapter/http"
	kafkaadapter "github.com/inletlabs/kitecast/internal/adapter/kafka"
	"github.com/inletlabs/kitecast/internal/adapter/openmeteo"
	"github.com/inletlabs/kitecast/internal/config"
	"github.com/inletlabs/kitecast/internal/observability"
	"github.com/inletlabs/kitecast/internal/pipeline"

	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loc := cfg.Location()
	clock := clockwork.NewRealClock()

	siteClient := openmeteo.NewClient("site", cfg.ForecastBaseURL, cfg.ArchiveBaseURL,
		loc, cfg.FetchTimeout, metrics, logger)
	refClient := openmeteo.NewClient("reference", cfg.ForecastBaseURL, cfg.ArchiveBaseURL,
		loc, cfg.FetchTimeout, metrics, logger)

	siteFetcher := openmeteo.NewCachedFetcher(siteClient, cfg.FetchCacheTTL, clock, metrics)
	refFetcher := openmeteo.NewCachedFetcher(refClient, cfg.FetchCacheTTL, clock, metrics)

	// Digest publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.DigestPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaDigestTopic, logger)
		publisher = writer
		logger.Info("kafka digest publishing enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaDigestTopic)
	} else {
		logger.Info("kafka digest publishing disabled")
	}

	forecaster := pipeline.NewForecaster(siteFetcher, refFetcher, pipeline.ForecasterConfig{
		Site: pipeline.Site{
			Name:     cfg.SiteName,
			Lat:      cfg.SiteLat,
			Lon:      cfg.SiteLon,
			Timezone: cfg.Timezone,
		},
		RefLat:   cfg.RefLat,
		RefLon:   cfg.RefLon,
		Model:    cfg.ModelConfig(),
		Interval: cfg.RefreshInterval,
	}, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, forecaster, forecaster, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start forecast refresh loop.
	go func() {
		if err := forecaster.Run(ctx); err != nil {
			logger.Error("forecaster error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
