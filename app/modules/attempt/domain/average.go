package attemptdomain

import (
	"cmp"
	"slices"
)

// RemoveCount is ceil(size * 5%), the number of results trimmed from each end.
func RemoveCount(size int) int {
	if size <= 0 {
		return 0
	}
	return (size*5 + 99) / 100
}

// Average returns the trimmed mean of window, which must be ordered
// newest-first and hold exactly size attempts. ok is false when the window is
// short or holds more DNFs than can be trimmed away.
func Average(window []Attempt, size int) (avg int, ok bool) {
	if size <= 0 || len(window) != size {
		return 0, false
	}

	remove := RemoveCount(size)
	if 2*remove >= size {
		return 0, false
	}

	dnfs := 0
	for _, a := range window {
		if a.DNF {
			dnfs++
		}
	}
	if dnfs > remove {
		return 0, false
	}

	ranked := slices.Clone(window)
	// Valid attempts first, fastest to slowest. DNFs keep their input order.
	slices.SortStableFunc(ranked, func(a, b Attempt) int {
		switch {
		case a.DNF && b.DNF:
			return 0
		case a.DNF:
			return 1
		case b.DNF:
			return -1
		}
		return cmp.Compare(a.Milliseconds, b.Milliseconds)
	})

	middle := ranked[remove : size-remove]
	sum := 0
	for _, a := range middle {
		sum += a.Milliseconds
	}
	n := len(middle)
	return roundHalfUp(sum, n), true
}

// roundHalfUp divides sum by n rounding .5 upwards. sum must be non-negative.
func roundHalfUp(sum, n int) int {
	return (2*sum + n) / (2 * n)
}
