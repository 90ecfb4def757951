package attemptdb

import (
	"context"
	"time"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Attempt is a persisted solve.
type Attempt struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	UserID       uuid.UUID `bun:"user_id,type:uuid,notnull"`
	PuzzleTypeID uuid.UUID `bun:"puzzle_type_id,type:uuid,notnull"`
	PerformedAt  time.Time `bun:"performed_at,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	Milliseconds int       `bun:"milliseconds,notnull"`
	DNF          bool      `bun:"dnf,notnull"`
	Penalty      int       `bun:"penalty,notnull"`
}

var _ bun.BeforeAppendModelHook = (*Attempt)(nil)

func (a *Attempt) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		if a.PerformedAt.IsZero() {
			a.PerformedAt = a.CreatedAt
		}
	}
	return nil
}

func (a Attempt) ToDomain() attemptdomain.Attempt {
	return attemptdomain.Attempt{
		ID:           a.ID,
		UserID:       a.UserID,
		PuzzleTypeID: a.PuzzleTypeID,
		PerformedAt:  a.PerformedAt,
		CreatedAt:    a.CreatedAt,
		Milliseconds: a.Milliseconds,
		DNF:          a.DNF,
		Penalty:      a.Penalty,
	}
}

// AttemptsToDomain converts rows while keeping their order.
func AttemptsToDomain(rows []Attempt) []attemptdomain.Attempt {
	out := make([]attemptdomain.Attempt, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
	}
	return out
}

// BestRecord is one ledger entry. Sequence is its position in the ledger.
type BestRecord struct {
	bun.BaseModel `bun:"table:best_records,alias:br"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	UserID           uuid.UUID `bun:"user_id,type:uuid,notnull"`
	PuzzleTypeID     uuid.UUID `bun:"puzzle_type_id,type:uuid,notnull"`
	AttemptID        uuid.UUID `bun:"attempt_id,type:uuid,notnull"`
	Category         string    `bun:"category,notnull"`
	Milliseconds     int       `bun:"milliseconds,notnull"`
	Sequence         int       `bun:"sequence,notnull"`
	PerformedAt      time.Time `bun:"performed_at,notnull"`
	AttemptCreatedAt time.Time `bun:"attempt_created_at,notnull"`
}

func (b BestRecord) ToDomain() attemptdomain.BestRecord {
	return attemptdomain.BestRecord{
		Category:         attemptdomain.AverageKind(b.Category),
		AttemptID:        b.AttemptID,
		UserID:           b.UserID,
		PuzzleTypeID:     b.PuzzleTypeID,
		Milliseconds:     b.Milliseconds,
		PerformedAt:      b.PerformedAt,
		AttemptCreatedAt: b.AttemptCreatedAt,
	}
}

// Pair identifies one ledger.
type Pair struct {
	UserID       uuid.UUID `bun:"user_id,type:uuid"`
	PuzzleTypeID uuid.UUID `bun:"puzzle_type_id,type:uuid"`
}

// Filter narrows attempt reads. Nil fields match everything.
type Filter struct {
	UserID       *uuid.UUID
	PuzzleTypeID *uuid.UUID
}
