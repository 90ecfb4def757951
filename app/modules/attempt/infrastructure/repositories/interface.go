package attemptdb

import (
	"context"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AttemptRepository persists attempts. Every ordered read returns canonical
// order: performed_at DESC, created_at DESC, id DESC.
type AttemptRepository interface {
	FetchOrdered(ctx context.Context, db bun.IDB, filter Filter, skip, take int) ([]Attempt, error)
	FetchAll(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]Attempt, error)
	Count(ctx context.Context, db bun.IDB, filter Filter) (int, error)
	Insert(ctx context.Context, db bun.IDB, attempt *Attempt) error
	InsertBatch(ctx context.Context, db bun.IDB, attempts []Attempt) (int, error)
	// ListPairs returns every (user, puzzle type) pair with at least one attempt.
	ListPairs(ctx context.Context, db bun.IDB) ([]Pair, error)
}

// BestRepository persists record ledgers.
type BestRepository interface {
	// LockPair serialises ledger writers for a pair until the surrounding
	// transaction ends. It is a no-op outside Postgres.
	LockPair(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) error

	// ReplaceLedger atomically swaps the stored ledger for the pair.
	ReplaceLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, ledger []attemptdomain.BestRecord) error

	// LatestByCategory returns ErrNotFound when the category has no record.
	LatestByCategory(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, kind attemptdomain.AverageKind) (*BestRecord, error)

	GetLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]BestRecord, error)
}
