package puzzletypemigrations

import (
	"context"
	"fmt"

	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating puzzle_types table...")
		if _, err := db.NewCreateTable().Model((*puzzletypedb.PuzzleType)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create puzzle_types table: %w", err)
		}
		fmt.Println("Puzzle types table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping puzzle_types table...")
		if _, err := db.NewDropTable().Model((*puzzletypedb.PuzzleType)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop puzzle_types table: %w", err)
		}
		return nil
	})
}
