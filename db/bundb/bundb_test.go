package bundb

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.StorageConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, MigrateAll(ctx, db, logger))
	// Running again is a no-op.
	require.NoError(t, MigrateAll(ctx, db, logger))

	for _, table := range []string{"users", "puzzle_types", "attempts", "best_records"} {
		var n int
		err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &n)
		assert.NoError(t, err, table)
	}

	assert.Len(t, Migrators(db), 3)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}
