// Command hangarbay normalizes the latest (or a selected) FAA registry
// snapshot and publishes it to the configured stores.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hangarbay/registry-etl/internal/adapter/clickhouse"
	httpadapter "github.com/hangarbay/registry-etl/internal/adapter/http"
	kafkaadapter "github.com/hangarbay/registry-etl/internal/adapter/kafka"
	natsadapter "github.com/hangarbay/registry-etl/internal/adapter/nats"
	"github.com/hangarbay/registry-etl/internal/adapter/postgres"
	"github.com/hangarbay/registry-etl/internal/adapter/sqlite"
	"github.com/hangarbay/registry-etl/internal/config"
	"github.com/hangarbay/registry-etl/internal/observability"
	"github.com/hangarbay/registry-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var publishers []pipeline.Publisher
	var notifiers []pipeline.Notifier
	if cfg.RunsStage(config.StagePublish) {
		publishers = append(publishers,
			sqlite.NewStore(filepath.Join(pipeline.PublishDir(cfg.DataDir), sqlite.FileName), logger))

		if cfg.ClickHouseEnabled() {
			store, err := clickhouse.Open(ctx, cfg, logger)
			if err != nil {
				logger.Error("clickhouse unavailable", "error", err)
				return 1
			}
			closers = append(closers, func() {
				if err := store.Close(); err != nil {
					logger.Error("clickhouse close error", "error", err)
				}
			})
			publishers = append(publishers, store)
		}

		if cfg.PostgresEnabled() {
			store, err := postgres.Open(ctx, cfg.PostgresURL, logger)
			if err != nil {
				logger.Error("postgres unavailable", "error", err)
				return 1
			}
			closers = append(closers, store.Close)
			publishers = append(publishers, store)
		}

		if cfg.KafkaEnabled() {
			n := kafkaadapter.NewNotifier(cfg, logger)
			closers = append(closers, func() {
				if err := n.Close(); err != nil {
					logger.Error("kafka writer close error", "error", err)
				}
			})
			notifiers = append(notifiers, n)
		}

		if cfg.NATSEnabled() {
			n, err := natsadapter.Connect(cfg, logger)
			if err != nil {
				// Notices are best effort; the publish still runs.
				logger.Warn("nats unavailable, snapshot notices disabled", "error", err)
			} else {
				closers = append(closers, func() {
					if err := n.Close(); err != nil {
						logger.Error("nats close error", "error", err)
					}
				})
				notifiers = append(notifiers, n)
			}
		}
	}

	p := pipeline.New(pipeline.Options{
		DataDir:      cfg.DataDir,
		SnapshotDate: cfg.SnapshotDate,
		Stages:       cfg.Stages,
	}, publishers, notifiers, logger, metrics)

	if cfg.HTTPAddr == "" {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			return 1
		}
		return 0
	}

	// With the HTTP server enabled the process stays up after the run so
	// the last run stays visible on /readyz, /status, and /metrics.
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	code := 0
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
		code = 1
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return code
}
