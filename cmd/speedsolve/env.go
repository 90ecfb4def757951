package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/db/bundb"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

// env is what every command works against.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *bun.DB
	bus      eventbus.EventBus
	users    userdb.Repository
	puzzles  puzzletypedb.Repository
	attempts attemptdb.AttemptRepository
	service  *attemptservice.AttemptService
}

func openEnv(c *cli.Context) (*env, error) {
	ctx := c.Context
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := bundb.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := bundb.MigrateAll(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	bus, err := openBus(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	e := &env{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		bus:      bus,
		users:    userdb.NewRepository(db),
		puzzles:  puzzletypedb.NewRepository(db),
		attempts: attemptdb.NewAttemptRepository(db),
	}
	e.service = attemptservice.NewAttemptService(
		e.attempts,
		attemptdb.NewBestRepository(db),
		e.users,
		e.puzzles,
		bus,
		logger,
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("speedsolve-cli"),
		db,
		attemptservice.Options{
			DefaultPageSize:    cfg.Stats.DefaultPageSize,
			MaxPageSize:        cfg.Stats.MaxPageSize,
			RebuildConcurrency: cfg.Stats.RebuildConcurrency,
		},
	)
	return e, nil
}

func openBus(ctx context.Context, cfg *config.Config, logger *slog.Logger) (eventbus.EventBus, error) {
	if cfg.NATS.Enabled {
		return eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, logger)
	}
	return eventbus.NewInMemoryEventBus(logger), nil
}

func (e *env) Close() {
	if err := e.bus.Close(); err != nil {
		e.logger.Warn("Failed to close event bus", "error", err)
	}
	if err := e.db.Close(); err != nil {
		e.logger.Warn("Failed to close database", "error", err)
	}
}

// resolveUser accepts a user id or name.
func (e *env) resolveUser(ctx context.Context, ref string) (*userdb.User, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return e.users.GetByID(ctx, e.db, id)
	}
	return e.users.GetByName(ctx, e.db, ref)
}

// resolvePuzzle accepts a puzzle type id or slug.
func (e *env) resolvePuzzle(ctx context.Context, ref string) (*puzzletypedb.PuzzleType, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return e.puzzles.GetByID(ctx, e.db, id)
	}
	return e.puzzles.GetBySlug(ctx, e.db, ref)
}
