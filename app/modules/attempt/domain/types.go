package attemptdomain

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is a single timed solve. Milliseconds is meaningless when DNF is set.
type Attempt struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	PuzzleTypeID uuid.UUID
	PerformedAt  time.Time
	CreatedAt    time.Time
	Milliseconds int
	DNF          bool
	Penalty      int
}

// AverageKind identifies a record category.
type AverageKind string

const (
	KindSingle AverageKind = "SINGLE"
	KindAo5    AverageKind = "AO5"
	KindAo12   AverageKind = "AO12"
	KindAo100  AverageKind = "AO100"
)

// Kinds lists every category in ledger emission order.
var Kinds = []AverageKind{KindSingle, KindAo5, KindAo12, KindAo100}

// Size is the number of attempts a kind spans.
func (k AverageKind) Size() int {
	switch k {
	case KindAo5:
		return 5
	case KindAo12:
		return 12
	case KindAo100:
		return 100
	default:
		return 1
	}
}

// BestRecord is one record-breaking event. PerformedAt and AttemptCreatedAt
// mirror the associated attempt so records can be ordered without a join.
type BestRecord struct {
	Category         AverageKind
	AttemptID        uuid.UUID
	UserID           uuid.UUID
	PuzzleTypeID     uuid.UUID
	Milliseconds     int
	PerformedAt      time.Time
	AttemptCreatedAt time.Time
}

// CurrentBests is the latest record per category. Nil means no record.
type CurrentBests struct {
	Single *BestRecord `json:"single"`
	Ao5    *BestRecord `json:"ao5"`
	Ao12   *BestRecord `json:"ao12"`
	Ao100  *BestRecord `json:"ao100"`
}

// Get returns the record for kind.
func (b CurrentBests) Get(kind AverageKind) *BestRecord {
	switch kind {
	case KindSingle:
		return b.Single
	case KindAo5:
		return b.Ao5
	case KindAo12:
		return b.Ao12
	case KindAo100:
		return b.Ao100
	}
	return nil
}

// Set stores rec under kind. Unknown kinds are ignored.
func (b *CurrentBests) Set(kind AverageKind, rec *BestRecord) {
	switch kind {
	case KindSingle:
		b.Single = rec
	case KindAo5:
		b.Ao5 = rec
	case KindAo12:
		b.Ao12 = rec
	case KindAo100:
		b.Ao100 = rec
	}
}
