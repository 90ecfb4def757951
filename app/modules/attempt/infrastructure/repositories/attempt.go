package attemptdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const insertChunkSize = 500

// AttemptImpl implements AttemptRepository using Bun ORM.
type AttemptImpl struct {
	db bun.IDB
}

func NewAttemptRepository(db bun.IDB) AttemptRepository {
	return &AttemptImpl{db: db}
}

func (r *AttemptImpl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func applyFilter(q *bun.SelectQuery, filter Filter) *bun.SelectQuery {
	if filter.UserID != nil {
		q = q.Where("a.user_id = ?", *filter.UserID)
	}
	if filter.PuzzleTypeID != nil {
		q = q.Where("a.puzzle_type_id = ?", *filter.PuzzleTypeID)
	}
	return q
}

func canonicalOrder(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("a.performed_at DESC").
		OrderExpr("a.created_at DESC").
		OrderExpr("a.id DESC")
}

// FetchOrdered returns up to take attempts after skipping skip, newest first.
func (r *AttemptImpl) FetchOrdered(ctx context.Context, db bun.IDB, filter Filter, skip, take int) ([]Attempt, error) {
	if skip < 0 || take < 0 {
		return nil, ErrInvalidPage
	}
	if take == 0 {
		return []Attempt{}, nil
	}
	db = r.resolveDB(db)

	var rows []Attempt
	q := db.NewSelect().Model(&rows)
	q = canonicalOrder(applyFilter(q, filter)).Offset(skip).Limit(take)
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch attempts: %w", err)
	}
	return rows, nil
}

// FetchAll returns the full history of a pair, newest first.
func (r *AttemptImpl) FetchAll(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]Attempt, error) {
	db = r.resolveDB(db)

	var rows []Attempt
	q := db.NewSelect().Model(&rows)
	q = canonicalOrder(applyFilter(q, Filter{UserID: &userID, PuzzleTypeID: &puzzleTypeID}))
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch attempt history: %w", err)
	}
	return rows, nil
}

func (r *AttemptImpl) Count(ctx context.Context, db bun.IDB, filter Filter) (int, error) {
	db = r.resolveDB(db)
	n, err := applyFilter(db.NewSelect().Model((*Attempt)(nil)), filter).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return n, nil
}

func (r *AttemptImpl) Insert(ctx context.Context, db bun.IDB, attempt *Attempt) error {
	db = r.resolveDB(db)
	res, err := db.NewInsert().Model(attempt).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// InsertBatch inserts attempts in chunks and returns how many were written.
func (r *AttemptImpl) InsertBatch(ctx context.Context, db bun.IDB, attempts []Attempt) (int, error) {
	if len(attempts) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)

	total := 0
	for start := 0; start < len(attempts); start += insertChunkSize {
		end := min(start+insertChunkSize, len(attempts))
		chunk := attempts[start:end]
		if _, err := db.NewInsert().Model(&chunk).Exec(ctx); err != nil {
			return total, fmt.Errorf("failed to insert attempts %d-%d: %w", start, end, err)
		}
		total += len(chunk)
	}
	return total, nil
}

func (r *AttemptImpl) ListPairs(ctx context.Context, db bun.IDB) ([]Pair, error) {
	db = r.resolveDB(db)

	var pairs []Pair
	err := db.NewSelect().
		Model((*Attempt)(nil)).
		ColumnExpr("a.user_id, a.puzzle_type_id").
		Group("a.user_id", "a.puzzle_type_id").
		OrderExpr("a.user_id ASC, a.puzzle_type_id ASC").
		Scan(ctx, &pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempt pairs: %w", err)
	}
	return pairs, nil
}
