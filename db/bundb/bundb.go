// Package bundb opens the configured database and applies every module's
// migrations.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	attemptmigrations "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories/migrations"
	puzzletypemigrations "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	_ "modernc.org/sqlite"
)

// ModuleMigrations lists module migration sets in dependency order.
var ModuleMigrations = []struct {
	Name       string
	Migrations *migrate.Migrations
}{
	{"user", usermigrations.Migrations},
	{"puzzletype", puzzletypemigrations.Migrations},
	{"attempt", attemptmigrations.Migrations},
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.StorageConfig) (*bun.DB, error) {
	var db *bun.DB
	switch cfg.Driver {
	case config.DriverPostgres, "":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case config.DriverSQLite:
		sqldb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// One connection keeps in-memory databases shared and writes serialised.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrators returns one migrator per module, each tracked in its own table.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	out := make(map[string]*migrate.Migrator, len(ModuleMigrations))
	for _, m := range ModuleMigrations {
		out[m.Name] = newMigrator(db, m.Name, m.Migrations)
	}
	return out
}

func newMigrator(db *bun.DB, name string, migrations *migrate.Migrations) *migrate.Migrator {
	return migrate.NewMigrator(db, migrations,
		migrate.WithTableName(name+"_migrations"),
		migrate.WithLocksTableName(name+"_migration_locks"),
	)
}

// MigrateAll initialises and runs every module's pending migrations in order.
func MigrateAll(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for _, m := range ModuleMigrations {
		migrator := newMigrator(db, m.Name, m.Migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", m.Name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module", slog.String("module", m.Name), slog.String("group", group.String()))
	}
	return nil
}
