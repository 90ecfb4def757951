package puzzletypedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*PuzzleType, error) {
	db = r.resolveDB(db)
	pt := new(PuzzleType)
	if err := db.NewSelect().Model(pt).Where("pt.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get puzzle type by id: %w", err)
	}
	return pt, nil
}

func (r *Impl) GetBySlug(ctx context.Context, db bun.IDB, slug string) (*PuzzleType, error) {
	db = r.resolveDB(db)
	pt := new(PuzzleType)
	if err := db.NewSelect().Model(pt).Where("pt.slug = ?", slug).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get puzzle type by slug: %w", err)
	}
	return pt, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]PuzzleType, error) {
	db = r.resolveDB(db)
	var out []PuzzleType
	if err := db.NewSelect().Model(&out).OrderExpr("pt.slug ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list puzzle types: %w", err)
	}
	return out, nil
}

// Upsert creates or renames a puzzle type by slug.
func (r *Impl) Upsert(ctx context.Context, db bun.IDB, pt *PuzzleType) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(pt).
		On("CONFLICT (slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert puzzle type: %w", err)
	}
	return nil
}
