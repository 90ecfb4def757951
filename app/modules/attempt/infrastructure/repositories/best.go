package attemptdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BestImpl implements BestRepository using Bun ORM.
type BestImpl struct {
	db bun.IDB
}

func NewBestRepository(db bun.IDB) BestRepository {
	return &BestImpl{db: db}
}

func (r *BestImpl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// pairLockKey is hashed by Postgres into the advisory lock id.
func pairLockKey(userID, puzzleTypeID uuid.UUID) string {
	return "ledger:" + userID.String() + ":" + puzzleTypeID.String()
}

// LockPair takes a transaction-scoped advisory lock on Postgres. SQLite
// serialises writers on its own.
func (r *BestImpl) LockPair(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) error {
	db = r.resolveDB(db)
	if db.Dialect().Name() != dialect.PG {
		return nil
	}
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", pairLockKey(userID, puzzleTypeID)); err != nil {
		return fmt.Errorf("failed to lock ledger: %w", err)
	}
	return nil
}

// ReplaceLedger deletes the pair's ledger and inserts the new one inside a
// single transaction (a savepoint when db is already a transaction).
func (r *BestImpl) ReplaceLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, ledger []attemptdomain.BestRecord) error {
	db = r.resolveDB(db)

	rows := make([]BestRecord, len(ledger))
	for i, rec := range ledger {
		rows[i] = BestRecord{
			ID:               uuid.New(),
			UserID:           userID,
			PuzzleTypeID:     puzzleTypeID,
			AttemptID:        rec.AttemptID,
			Category:         string(rec.Category),
			Milliseconds:     rec.Milliseconds,
			Sequence:         i,
			PerformedAt:      rec.PerformedAt,
			AttemptCreatedAt: rec.AttemptCreatedAt,
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.LockPair(ctx, tx, userID, puzzleTypeID); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*BestRecord)(nil)).
			Where("user_id = ?", userID).
			Where("puzzle_type_id = ?", puzzleTypeID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete ledger: %w", err)
		}

		for start := 0; start < len(rows); start += insertChunkSize {
			chunk := rows[start:min(start+insertChunkSize, len(rows))]
			if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert ledger: %w", err)
			}
		}
		return nil
	})
}

func (r *BestImpl) LatestByCategory(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, kind attemptdomain.AverageKind) (*BestRecord, error) {
	db = r.resolveDB(db)

	rec := new(BestRecord)
	err := db.NewSelect().
		Model(rec).
		Where("br.user_id = ?", userID).
		Where("br.puzzle_type_id = ?", puzzleTypeID).
		Where("br.category = ?", string(kind)).
		OrderExpr("br.performed_at DESC").
		OrderExpr("br.attempt_created_at DESC").
		OrderExpr("br.sequence DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest %s record: %w", kind, err)
	}
	return rec, nil
}

// GetLedger returns the pair's ledger in build order.
func (r *BestImpl) GetLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]BestRecord, error) {
	db = r.resolveDB(db)

	var rows []BestRecord
	err := db.NewSelect().
		Model(&rows).
		Where("br.user_id = ?", userID).
		Where("br.puzzle_type_id = ?", puzzleTypeID).
		OrderExpr("br.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return rows, nil
}
