package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/metar-minima/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/metar-minima/internal/adapter/kafka"
	"github.com/couchcryptid/metar-minima/internal/config"
	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/couchcryptid/metar-minima/internal/observability"
	"github.com/couchcryptid/metar-minima/internal/pipeline"
	"github.com/couchcryptid/metar-minima/internal/solar"
	"github.com/couchcryptid/metar-minima/internal/stats"
	"github.com/couchcryptid/metar-minima/internal/store"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var limits []domain.Limit
	if cfg.LimitsFile != "" {
		limits, err = config.LoadLimits(cfg.LimitsFile)
		if err != nil {
			logger.Error("failed to load limits", "error", err, "path", cfg.LimitsFile)
			os.Exit(1)
		}
		logger.Info("limits loaded", "count", len(limits), "path", cfg.LimitsFile)
	}
	st := store.New(limits)

	sun := solar.NewEngine(cfg.DefaultStation, cfg.SunCacheSize, solar.WithCacheObserver(metrics.ObserveSunCache))

	// Verdict sink (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var loader pipeline.BatchLoader = pipeline.DiscardLoader{}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka verdict sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka verdict sink disabled")
	}

	p := pipeline.New(loader, logger, metrics, cfg.BatchSize)
	api := httpadapter.NewAPI(st, p, sun, metrics, cfg.MaxUploadBytes, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, logger)

	refresher := newComplianceRefresher(st, stats.NewAggregator(sun), metrics.ComplianceRatio, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.StatsRefreshSchedule, refresher.Refresh); err != nil {
		logger.Error("invalid stats refresh schedule", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("stats refresh still running at shutdown")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
