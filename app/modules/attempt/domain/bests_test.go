package attemptdomain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBestsFrom(t *testing.T) {
	at := func(min int) time.Time { return testBase.Add(time.Duration(min) * time.Minute) }
	rec := func(kind AverageKind, ms, performed, created int) BestRecord {
		return BestRecord{
			Category:         kind,
			AttemptID:        uuid.New(),
			Milliseconds:     ms,
			PerformedAt:      at(performed),
			AttemptCreatedAt: at(created),
		}
	}

	t.Run("latest record per category wins", func(t *testing.T) {
		ledger := []BestRecord{
			rec(KindSingle, 9000, 0, 0),
			rec(KindSingle, 8000, 5, 5),
			rec(KindAo5, 9500, 4, 4),
			rec(KindSingle, 7000, 9, 9),
		}

		got := CurrentBestsFrom(ledger)

		require.NotNil(t, got.Single)
		assert.Equal(t, 7000, got.Single.Milliseconds)
		require.NotNil(t, got.Ao5)
		assert.Equal(t, 9500, got.Ao5.Milliseconds)
		assert.Nil(t, got.Ao12)
		assert.Nil(t, got.Ao100)
	})

	t.Run("performedAt beats ledger position", func(t *testing.T) {
		ledger := []BestRecord{
			rec(KindSingle, 6000, 10, 1),
			rec(KindSingle, 9000, 2, 2),
		}

		assert.Equal(t, 6000, CurrentBestsFrom(ledger).Single.Milliseconds)
	})

	t.Run("createdAt breaks performedAt ties", func(t *testing.T) {
		ledger := []BestRecord{
			rec(KindAo12, 8000, 3, 7),
			rec(KindAo12, 9000, 3, 4),
		}

		assert.Equal(t, 8000, CurrentBestsFrom(ledger).Ao12.Milliseconds)
	})

	t.Run("empty ledger", func(t *testing.T) {
		assert.Equal(t, CurrentBests{}, CurrentBestsFrom(nil))
	})
}

func TestAverageKind(t *testing.T) {
	assert.Equal(t, 1, KindSingle.Size())
	assert.Equal(t, 5, KindAo5.Size())
	assert.Equal(t, 12, KindAo12.Size())
	assert.Equal(t, 100, KindAo100.Size())
}
