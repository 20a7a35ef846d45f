// Package bootstrap wires the shared runtime of every service binary: config,
// logging, tracing, metrics, the database pool and the broker producer.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/foodordering/system/internal/infrastructure/config"
	"github.com/foodordering/system/internal/infrastructure/kafka"
	"github.com/foodordering/system/internal/infrastructure/observability"
	"github.com/foodordering/system/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Pool     *pgxpool.Pool
	Producer *kafka.Producer
	Metrics  *observability.Metrics
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Msg("Starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				observability.Shutdown(context.Background(), tp)
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("Connected to PostgreSQL")

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, cfg.Kafka.PublishRetries, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Producer: producer,
		Metrics:  metrics,
	}, nil
}

func (a *App) Close() {
	a.Producer.Close()
	a.Pool.Close()
}
