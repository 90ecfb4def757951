package attemptdomain

// Lookback is the number of extra attempts fetched past a page so the last
// row still has a full AO100 window behind it.
const Lookback = 99

// WithAverages is an attempt annotated with its rolling averages at that
// point in history. A nil average means not enough data.
type WithAverages struct {
	Attempt
	Ao5   *int
	Ao12  *int
	Ao100 *int
}

// AttachAverages computes ao5/ao12/ao100 for every attempt in fetched
// (newest-first) and returns the first take rows. Rows near the end of
// fetched get nil averages rather than an error.
func AttachAverages(fetched []Attempt, take int) []WithAverages {
	if take < 0 {
		take = 0
	}
	if take > len(fetched) {
		take = len(fetched)
	}

	out := make([]WithAverages, take)
	for i := 0; i < take; i++ {
		out[i] = WithAverages{
			Attempt: fetched[i],
			Ao5:     averageAt(fetched, i, 5),
			Ao12:    averageAt(fetched, i, 12),
			Ao100:   averageAt(fetched, i, 100),
		}
	}
	return out
}

// Window returns attempts[start:start+size], clamped to the slice end.
func Window(attempts []Attempt, start, size int) []Attempt {
	if start < 0 || start >= len(attempts) {
		return nil
	}
	end := min(start+size, len(attempts))
	return attempts[start:end]
}

func averageAt(attempts []Attempt, start, size int) *int {
	avg, ok := Average(Window(attempts, start, size), size)
	if !ok {
		return nil
	}
	return &avg
}
