package puzzletypedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for puzzle type persistence.
type Repository interface {
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*PuzzleType, error)
	GetBySlug(ctx context.Context, db bun.IDB, slug string) (*PuzzleType, error)
	List(ctx context.Context, db bun.IDB) ([]PuzzleType, error)
	Upsert(ctx context.Context, db bun.IDB, pt *PuzzleType) error
}
