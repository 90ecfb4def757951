package attemptqueue

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

const (
	// QueueLedgers is the dedicated queue for ledger rebuilds.
	QueueLedgers = "ledgers"

	kindLedgerRebuild = "ledger_rebuild"
)

// LedgerRebuildJob rebuilds the record ledger of one (user, puzzle type) pair.
type LedgerRebuildJob struct {
	UserID       uuid.UUID `json:"user_id"`
	PuzzleTypeID uuid.UUID `json:"puzzle_type_id"`
}

// Kind returns the job type identifier for River
func (LedgerRebuildJob) Kind() string { return kindLedgerRebuild }

// InsertOpts keeps at most one pending rebuild per pair.
func (LedgerRebuildJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue: QueueLedgers,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
