// Package attempttypes holds the JSON shapes shared by the HTTP API and
// published events.
package attempttypes

import (
	"time"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	"github.com/google/uuid"
)

type AttemptInfo struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	PuzzleTypeID uuid.UUID `json:"puzzleTypeId"`
	PerformedAt  time.Time `json:"performedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	Milliseconds int       `json:"milliseconds"`
	DNF          bool      `json:"dnf"`
	Penalty      int       `json:"penalty"`
	Ao5          *int      `json:"ao5"`
	Ao12         *int      `json:"ao12"`
	Ao100        *int      `json:"ao100"`
}

type BestInfo struct {
	Category     attemptdomain.AverageKind `json:"category"`
	AttemptID    uuid.UUID                 `json:"attemptId"`
	Milliseconds int                       `json:"milliseconds"`
	PerformedAt  time.Time                 `json:"performedAt"`
}

type BestsInfo struct {
	Single *BestInfo `json:"single"`
	Ao5    *BestInfo `json:"ao5"`
	Ao12   *BestInfo `json:"ao12"`
	Ao100  *BestInfo `json:"ao100"`
}

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"totalCount"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPage fills the navigation flags from the request window.
func NewPage[T any](items []T, total, skip, take int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:           items,
		TotalCount:      total,
		HasNextPage:     total > skip+take,
		HasPreviousPage: skip > 0,
	}
}

func FromAttempt(a attemptdomain.Attempt) AttemptInfo {
	return AttemptInfo{
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

func FromWithAverages(a attemptdomain.WithAverages) AttemptInfo {
	info := FromAttempt(a.Attempt)
	info.Ao5, info.Ao12, info.Ao100 = a.Ao5, a.Ao12, a.Ao100
	return info
}

func fromBest(r *attemptdomain.BestRecord) *BestInfo {
	if r == nil {
		return nil
	}
	return &BestInfo{
		Category:     r.Category,
		AttemptID:    r.AttemptID,
		Milliseconds: r.Milliseconds,
		PerformedAt:  r.PerformedAt,
	}
}

func FromBests(b attemptdomain.CurrentBests) BestsInfo {
	return BestsInfo{
		Single: fromBest(b.Single),
		Ao5:    fromBest(b.Ao5),
		Ao12:   fromBest(b.Ao12),
		Ao100:  fromBest(b.Ao100),
	}
}
