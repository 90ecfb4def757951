package attemptmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the attempt module schema.
var Migrations = migrate.NewMigrations()
