package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	"github.com/Black-And-White-Club/speedsolve/app/modules/attempt"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/db/bundb"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// App holds the process-wide dependencies and the modules built on them.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus eventbus.EventBus
	Registry *prometheus.Registry

	AttemptModule *attempt.Module
}

// NewApp opens storage, runs migrations and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := bundb.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.InfoContext(ctx, "Database connected", slog.String("driver", cfg.Storage.Driver))

	if err := bundb.MigrateAll(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var bus eventbus.EventBus
	if cfg.NATS.Enabled {
		bus, err = eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		logger.InfoContext(ctx, "NATS event bus connected", slog.String("url", cfg.NATS.URL))
	} else {
		bus = eventbus.NewInMemoryEventBus(logger)
		logger.InfoContext(ctx, "NATS disabled, events stay in process")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	attemptMetrics, err := metrics.NewPrometheus(registry, "speedsolve")
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	tracer := otel.Tracer(cfg.Observability.ServiceName)

	attemptModule, err := attempt.NewAttemptModule(ctx, cfg, logger, attemptMetrics, tracer, bus, db)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize attempt module: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		EventBus:      bus,
		Registry:      registry,
		AttemptModule: attemptModule,
	}, nil
}

// Close releases the event bus and the database.
func (app *App) Close() error {
	var firstErr error
	if err := app.EventBus.Close(); err != nil {
		app.Logger.Error("Failed to close event bus", "error", err)
		firstErr = err
	}
	if err := app.DB.Close(); err != nil {
		app.Logger.Error("Failed to close database", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
