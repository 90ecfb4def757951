package attemptdomain

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerEntry struct {
	Category AverageKind
	Index    int
	Ms       int
}

// summarize maps each record's attempt back to its chronological index.
func summarize(history []Attempt, ledger []BestRecord) []ledgerEntry {
	pos := make(map[string]int, len(history))
	for i, a := range history {
		pos[a.ID.String()] = len(history) - 1 - i
	}
	out := make([]ledgerEntry, len(ledger))
	for i, r := range ledger {
		out[i] = ledgerEntry{Category: r.Category, Index: pos[r.AttemptID.String()], Ms: r.Milliseconds}
	}
	return out
}

func TestBuildLedger(t *testing.T) {
	t.Run("records only strict improvements in replay order", func(t *testing.T) {
		history := oldestFirst(10000, 12000, 9000, dnf, 9000, 8000)

		got := summarize(history, BuildLedger(history))

		want := []ledgerEntry{
			{KindSingle, 0, 10000},
			{KindSingle, 2, 9000},
			{KindAo5, 4, 10333},
			{KindSingle, 5, 8000},
			{KindAo5, 5, 10000},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ledger mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, BuildLedger(nil))
	})

	t.Run("only dnfs produce no single", func(t *testing.T) {
		assert.Empty(t, BuildLedger(oldestFirst(dnf, dnf, dnf)))
	})

	t.Run("records carry attempt metadata", func(t *testing.T) {
		history := oldestFirst(5000)
		ledger := BuildLedger(history)

		require.Len(t, ledger, 1)
		rec := ledger[0]
		assert.Equal(t, history[0].ID, rec.AttemptID)
		assert.Equal(t, testUser, rec.UserID)
		assert.Equal(t, testPuzzle, rec.PuzzleTypeID)
		assert.Equal(t, history[0].PerformedAt, rec.PerformedAt)
		assert.Equal(t, history[0].CreatedAt, rec.AttemptCreatedAt)
	})

	t.Run("ties do not create records", func(t *testing.T) {
		history := oldestFirst(7000, 7000, 7000, 7000, 7000, 7000, 7000)

		got := summarize(history, BuildLedger(history))

		assert.Equal(t, []ledgerEntry{
			{KindSingle, 0, 7000},
			{KindAo5, 4, 7000},
		}, got)
	})
}

func randomHistory(r *rand.Rand, n int) []Attempt {
	values := make([]int, n)
	for i := range values {
		if r.IntN(15) == 0 {
			values[i] = dnf
			continue
		}
		values[i] = 5000 + r.IntN(20000)
	}
	return oldestFirst(values...)
}

func TestBuildLedgerProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 20; run++ {
		history := randomHistory(r, 50+r.IntN(250))
		ledger := BuildLedger(history)

		last := map[AverageKind]int{}
		for _, rec := range ledger {
			if prev, ok := last[rec.Category]; ok {
				assert.Less(t, rec.Milliseconds, prev, "category %s must strictly improve", rec.Category)
			}
			last[rec.Category] = rec.Milliseconds
		}

		again := BuildLedger(history)
		if diff := cmp.Diff(ledger, again); diff != "" {
			t.Fatalf("rebuild is not deterministic:\n%s", diff)
		}

		bests := CurrentBestsFrom(ledger)
		for _, kind := range Kinds {
			rec := bests.Get(kind)
			lowest, ok := last[kind]
			if !ok {
				assert.Nil(t, rec, "kind %s", kind)
				continue
			}
			require.NotNil(t, rec, "kind %s", kind)
			assert.Equal(t, lowest, rec.Milliseconds, "kind %s", kind)
		}
	}
}

func TestBuildLedgerAgreesWithWindowAverages(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	history := randomHistory(r, 120)

	rows := AttachAverages(history, len(history))
	bestAo12 := 0
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Ao12 != nil && (bestAo12 == 0 || *rows[i].Ao12 < bestAo12) {
			bestAo12 = *rows[i].Ao12
		}
	}

	rec := CurrentBestsFrom(BuildLedger(history)).Ao12
	require.NotNil(t, rec)
	assert.Equal(t, bestAo12, rec.Milliseconds)
}
