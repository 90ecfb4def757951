package attemptservice

import (
	"context"
	"io"
	"time"

	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	"github.com/google/uuid"
)

// Service is the attempt statistics API.
type Service interface {
	ListAttempts(ctx context.Context, req ListAttemptsRequest) (*attempttypes.Page[attempttypes.AttemptInfo], error)
	CreateAttempt(ctx context.Context, req NewAttempt) (*CreateAttemptResult, error)
	BatchCreateAttempts(ctx context.Context, reqs []NewAttempt) (int, error)
	ImportAttempts(ctx context.Context, userID, puzzleTypeID uuid.UUID, filename string, r io.Reader) (int, error)
	CurrentBests(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
	RebuildLedger(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
	RebuildAll(ctx context.Context) (*RebuildSummary, error)
	LedgerChart(ctx context.Context, userID, puzzleTypeID uuid.UUID) ([]byte, error)
}

// ListAttemptsRequest pages through attempts. Nil Take uses the default page size.
type ListAttemptsRequest struct {
	UserID       *uuid.UUID
	PuzzleTypeID *uuid.UUID
	Skip         int
	Take         *int
}

// NewAttempt is an attempt to record. A nil PerformedAt means now.
type NewAttempt struct {
	UserID       uuid.UUID  `json:"userId"`
	PuzzleTypeID uuid.UUID  `json:"puzzleTypeId"`
	Milliseconds int        `json:"milliseconds"`
	DNF          bool       `json:"dnf"`
	Penalty      int        `json:"penalty"`
	PerformedAt  *time.Time `json:"performedAt,omitempty"`
}

// CreateAttemptResult is the stored attempt and the pair's bests after it.
type CreateAttemptResult struct {
	Attempt attempttypes.AttemptInfo `json:"attempt"`
	Bests   attempttypes.BestsInfo   `json:"bests"`
}

// RebuildSummary reports a RebuildAll run.
type RebuildSummary struct {
	Pairs    int           `json:"pairs"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}
