package attemptdomain

// BuildLedger replays history (newest-first, one user and puzzle type) from
// the oldest attempt forward and emits a record whenever a category strictly
// improves. Windows are always cut from the newest-first list starting at the
// current attempt, so they only look at attempts that existed at that time.
func BuildLedger(history []Attempt) []BestRecord {
	n := len(history)
	var (
		ledger []BestRecord
		best   = make(map[AverageKind]int, len(Kinds))
	)

	for i := 0; i < n; i++ {
		orig := n - 1 - i
		current := history[orig]

		for _, kind := range Kinds {
			candidate, ok := candidateFor(history, orig, kind)
			if !ok {
				continue
			}
			if prev, seen := best[kind]; seen && candidate >= prev {
				continue
			}
			best[kind] = candidate
			ledger = append(ledger, BestRecord{
				Category:         kind,
				AttemptID:        current.ID,
				UserID:           current.UserID,
				PuzzleTypeID:     current.PuzzleTypeID,
				Milliseconds:     candidate,
				PerformedAt:      current.PerformedAt,
				AttemptCreatedAt: current.CreatedAt,
			})
		}
	}
	return ledger
}

func candidateFor(history []Attempt, orig int, kind AverageKind) (int, bool) {
	if kind == KindSingle {
		a := history[orig]
		if a.DNF {
			return 0, false
		}
		return a.Milliseconds, true
	}
	size := kind.Size()
	return Average(Window(history, orig, size), size)
}
