package usermigrations

import (
	"context"
	"fmt"

	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	// Ensure migration caller discovery is enabled so this migration gets a stable ID
	// even if init file ordering is not deterministic.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users table...")
		if _, err := db.NewCreateTable().Model((*userdb.User)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create users table: %w", err)
		}
		fmt.Println("Users table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping users table...")
		if _, err := db.NewDropTable().Model((*userdb.User)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop users table: %w", err)
		}
		return nil
	})
}
