package attemptdomain

import (
	"time"

	"github.com/google/uuid"
)

var (
	testUser   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testPuzzle = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testBase   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

const dnf = -1

// newestFirst builds attempts in canonical order from millisecond values;
// the value dnf marks an invalid attempt stored with dnfMs.
func newestFirst(dnfMs int, values ...int) []Attempt {
	out := make([]Attempt, len(values))
	for i, v := range values {
		a := Attempt{
			ID:           uuid.New(),
			UserID:       testUser,
			PuzzleTypeID: testPuzzle,
			PerformedAt:  testBase.Add(-time.Duration(i) * time.Minute),
			CreatedAt:    testBase.Add(-time.Duration(i) * time.Minute),
			Milliseconds: v,
		}
		if v == dnf {
			a.DNF = true
			a.Milliseconds = dnfMs
		}
		out[i] = a
	}
	return out
}

// oldestFirst is newestFirst with values given in chronological order.
func oldestFirst(values ...int) []Attempt {
	rev := make([]int, len(values))
	for i, v := range values {
		rev[len(values)-1-i] = v
	}
	return newestFirst(0, rev...)
}

func intPtr(v int) *int { return &v }
