// Package bundbtest provides a migrated in-memory database for tests.
package bundbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/db/bundb"
	"github.com/uptrace/bun"
)

// NewSQLite returns a fresh, fully migrated in-memory database closed at test end.
func NewSQLite(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := bundb.Open(ctx, config.StorageConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := bundb.MigrateAll(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
