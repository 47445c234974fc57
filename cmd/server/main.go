package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/artistpay/settler/internal/adapter/http"
	"github.com/artistpay/settler/internal/adapter/http/handler"
	postgresRepo "github.com/artistpay/settler/internal/adapter/repository/postgres"
	redisRepo "github.com/artistpay/settler/internal/adapter/repository/redis"
	"github.com/artistpay/settler/internal/infrastructure/config"
	"github.com/artistpay/settler/internal/infrastructure/logger"
	"github.com/artistpay/settler/internal/infrastructure/metrics"
	"github.com/artistpay/settler/internal/infrastructure/postgres"
	"github.com/artistpay/settler/internal/infrastructure/redis"
	"github.com/artistpay/settler/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	batchOpts := []usecase.BatchOption{
		usecase.WithWorkers(cfg.BatchWorkers),
		usecase.WithRunRecorder(metrics.New()),
	}

	if tolerance, err := decimal.NewFromString(cfg.ReconcileTolerance); err == nil {
		batchOpts = append(batchOpts, usecase.WithTolerance(tolerance))
	} else {
		appLogger.Warn().Str("value", cfg.ReconcileTolerance).Msg("invalid reconcile tolerance, using default")
	}

	// PostgreSQL is optional: without it the engine computes but does not
	// persist runs.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		batchOpts = append(batchOpts, usecase.WithRunRepository(postgresRepo.NewRunRepository(pool)))
		appLogger.Info().Msg("connected to postgres")
	} else {
		appLogger.Warn().Msg("DATABASE_URL not set, runs will not be persisted")
	}

	// Redis is optional as well.
	var redisClient *goredis.Client
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		batchOpts = append(batchOpts, usecase.WithRunCache(redisRepo.NewCache(redisClient), cfg.ReportCacheTTL))
		appLogger.Info().Msg("connected to redis")
	} else {
		appLogger.Warn().Msg("REDIS_URL not set, idempotency and report caching disabled")
	}

	idGen := postgresRepo.NewULIDGenerator()
	settlementUC := usecase.NewSettlementUseCase(idGen)
	batchUC := usecase.NewBatchUseCase(settlementUC, idGen, appLogger, batchOpts...)

	runHandler := handler.NewRunHandler(batchUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RunHandler:       runHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
