package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quiniela/platform/internal/guard"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/outbox"
	"github.com/quiniela/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if !producer.Enabled() {
		logger.Warn("kafka disabled, outbox events will be marked published without delivery")
	}

	metrics := infra.NewMetrics()
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort+1),
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer metricsSrv.Close()

	relay := outbox.NewRelay(
		pool,
		repository.NewOutboxRepository(),
		producer,
		guard.NewCircuitBreaker(5, 30*time.Second),
		metrics,
		logger,
		cfg.OutboxInterval,
		cfg.OutboxBatchSize,
		cfg.KafkaTopicPrefix,
	)
	return relay.Run(ctx)
}
