package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quiniela/platform/internal/app"
	"github.com/quiniela/platform/internal/auth"
	"github.com/quiniela/platform/internal/guard"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(cfg.DSN(), cfg.MigrationsDir, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	health := map[string]infra.Pinger{"postgres": pool}

	// Placement rate limit and Idempotency-Key store: Redis when configured,
	// otherwise per process.
	var limiter guard.Limiter = guard.NewRateLimiter(cfg.PlaceBetsPerMin, time.Minute)
	var idem guard.Deduplicator = guard.NewIdempotencyGuard(cfg.IdempotencyTTL)
	if cfg.RedisEnabled {
		client, err := guard.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using in-process guards", "error", err)
		} else {
			defer client.Close()
			rl := guard.NewRedisRateLimiter(client, cfg.PlaceBetsPerMin, time.Minute, logger)
			limiter = rl
			idem = guard.NewRedisIdempotencyGuard(client, cfg.IdempotencyTTL, logger)
			health["redis"] = rl
			logger.Info("connected to redis")
		}
	}

	router := app.NewRouter(app.RouterDeps{
		DB:                 pool,
		Tx:                 repository.NewTransactor(pool),
		Repos:              app.PostgresRepositories(),
		JWTMgr:             auth.NewJWTManager(cfg.JWTSecret, cfg.JWTUserExpiry, cfg.JWTAdminExpiry),
		Logger:             logger,
		Metrics:            infra.NewMetrics(),
		Limiter:            limiter,
		Idempotency:        idem,
		Health:             health,
		MaxBatchSize:       cfg.MaxBatchSize,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
