package attemptevents

import (
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	"github.com/google/uuid"
)

// Stream names
const (
	AttemptStreamName = "ATTEMPTS"
	AttemptSubjects   = "attempt.>"
)

// Attempt-related events
const (
	AttemptCreatedV1       = "attempt.created.v1"
	AttemptsBatchCreatedV1 = "attempt.batch_created.v1"
	LedgerRebuiltV1        = "attempt.ledger_rebuilt.v1"
)

// AttemptCreatedPayloadV1 is published after a new attempt and its ledger commit.
type AttemptCreatedPayloadV1 struct {
	Attempt attempttypes.AttemptInfo `json:"attempt"`
	Bests   attempttypes.BestsInfo   `json:"bests"`
}

// PairV1 names one ledger.
type PairV1 struct {
	UserID       uuid.UUID `json:"userId"`
	PuzzleTypeID uuid.UUID `json:"puzzleTypeId"`
}

// AttemptsBatchCreatedPayloadV1 is published after a batch commit.
type AttemptsBatchCreatedPayloadV1 struct {
	Count int      `json:"count"`
	Pairs []PairV1 `json:"pairs"`
}

// LedgerRebuiltPayloadV1 is published when a ledger is rebuilt outside attempt creation.
type LedgerRebuiltPayloadV1 struct {
	Pair  PairV1                 `json:"pair"`
	Bests attempttypes.BestsInfo `json:"bests"`
}
