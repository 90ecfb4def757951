package puzzletypedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	GetByIDFn   func(ctx context.Context, db bun.IDB, id uuid.UUID) (*PuzzleType, error)
	GetBySlugFn func(ctx context.Context, db bun.IDB, slug string) (*PuzzleType, error)
	ListFn      func(ctx context.Context, db bun.IDB) ([]PuzzleType, error)
	UpsertFn    func(ctx context.Context, db bun.IDB, pt *PuzzleType) error
}

// GetByID reports every id as existing unless overridden.
func (f *FakeRepository) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*PuzzleType, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, db, id)
	}
	return &PuzzleType{ID: id, Slug: "333", Name: "3x3x3 Cube"}, nil
}

func (f *FakeRepository) GetBySlug(ctx context.Context, db bun.IDB, slug string) (*PuzzleType, error) {
	if f.GetBySlugFn != nil {
		return f.GetBySlugFn(ctx, db, slug)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) List(ctx context.Context, db bun.IDB) ([]PuzzleType, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) Upsert(ctx context.Context, db bun.IDB, pt *PuzzleType) error {
	if f.UpsertFn != nil {
		return f.UpsertFn(ctx, db, pt)
	}
	return nil
}

var _ Repository = (*FakeRepository)(nil)
