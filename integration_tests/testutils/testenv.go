// Package testutils starts the containers integration tests run against.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/db/bundb"
	"github.com/Black-And-White-Club/speedsolve/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS, migrates the schema and
// connects the NATS event bus.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	env.Config = &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverPostgres, DSN: pgConnStr},
		NATS:    config.NATSConfig{Enabled: true, URL: natsURL},
		Queue:   config.QueueConfig{Enabled: true, MaxWorkers: 2},
		Stats:   config.StatsConfig{DefaultPageSize: 10, MaxPageSize: 500, RebuildConcurrency: 4},
	}

	db, err := bundb.Open(ctx, env.Config.Storage)
	if err != nil {
		return err
	}
	env.DB = db

	if err := bundb.MigrateAll(ctx, db, env.Logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := eventbus.NewNATSEventBus(ctx, natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = bus
	return nil
}

// Reset empties every table between tests.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	_, err := env.DB.ExecContext(env.Ctx, "TRUNCATE best_records, attempts, puzzle_types, users CASCADE")
	if err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	// River's tables exist only once a queue test has migrated them.
	_, _ = env.DB.ExecContext(env.Ctx, "DELETE FROM river_job")
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	ctx := context.Background()
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.CancelContext()
}
