package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	attemptqueue "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/queue"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/db/bundb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// namedMigrator keeps module order stable; dependents migrate after the
// tables they reference.
type namedMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := bundb.Open(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	byName := bundb.Migrators(db)
	migrators := make([]namedMigrator, 0, len(byName))
	for _, m := range bundb.ModuleMigrations {
		migrators = append(migrators, namedMigrator{name: m.Name, migrator: byName[m.Name]})
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators, byName, cfg),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

func newMultiModuleDBCommand(migrators []namedMigrator, byName map[string]*migrate.Migrator, cfg *config.Config) *cli.Command {
	lookup := func(c *cli.Context) (string, *migrate.Migrator, error) {
		moduleName := c.Args().First()
		migrator, ok := byName[moduleName]
		if !ok {
			return "", nil, fmt.Errorf("invalid module name: %s", moduleName)
		}
		return moduleName, migrator, nil
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						fmt.Printf("Running migrations for module: %s\n", m.name)
						group, err := m.migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					for _, m := range slices.Backward(migrators) {
						fmt.Printf("Rolling back migrations for module: %s\n", m.name)
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "river",
				Usage: "migrate the River job queue schema (postgres only)",
				Action: func(c *cli.Context) error {
					if cfg.Storage.Driver != config.DriverPostgres {
						return fmt.Errorf("river requires postgres, storage driver is %q", cfg.Storage.Driver)
					}
					pool, err := pgxpool.New(c.Context, cfg.Storage.DSN)
					if err != nil {
						return fmt.Errorf("failed to create pgx pool: %w", err)
					}
					defer pool.Close()
					if err := attemptqueue.Migrate(c.Context, pool); err != nil {
						return err
					}
					fmt.Println("River queue migrations completed")
					return nil
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					moduleName, migrator, err := lookup(c)
					if err != nil {
						return err
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					moduleName, migrator, err := lookup(c)
					if err != nil {
						return err
					}

					name := strings.Join(c.Args().Tail(), "_")
					files, err := migrator.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}

					for _, mf := range files {
						fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
