package attemptmigrations

import (
	"context"
	"fmt"

	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating attempts and best_records tables...")

		if _, err := db.NewCreateTable().Model((*attemptdb.Attempt)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create attempts table: %w", err)
		}
		if _, err := db.NewCreateIndex().
			Model((*attemptdb.Attempt)(nil)).
			Index("attempts_pair_order_idx").
			Column("user_id", "puzzle_type_id").
			ColumnExpr("performed_at DESC").
			ColumnExpr("created_at DESC").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create attempts index: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*attemptdb.BestRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create best_records table: %w", err)
		}
		if _, err := db.NewCreateIndex().
			Model((*attemptdb.BestRecord)(nil)).
			Index("best_records_pair_idx").
			Column("user_id", "puzzle_type_id", "category").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create best_records index: %w", err)
		}

		fmt.Println("Attempt tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping attempts and best_records tables...")

		if _, err := db.NewDropTable().Model((*attemptdb.BestRecord)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop best_records table: %w", err)
		}
		if _, err := db.NewDropTable().Model((*attemptdb.Attempt)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop attempts table: %w", err)
		}
		return nil
	})
}
