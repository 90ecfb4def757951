package attemptdomain

// CurrentBestsFrom resolves, per category, the record whose attempt was
// performed last (ties broken by attempt creation time). Since a ledger only
// records strict improvements this is also the fastest record.
func CurrentBestsFrom(ledger []BestRecord) CurrentBests {
	var out CurrentBests
	for i := range ledger {
		rec := ledger[i]
		cur := out.Get(rec.Category)
		// On identical timestamps the later ledger entry wins.
		if cur == nil || !isLater(*cur, rec) {
			out.Set(rec.Category, &rec)
		}
	}
	return out
}

func isLater(a, b BestRecord) bool {
	if !a.PerformedAt.Equal(b.PerformedAt) {
		return a.PerformedAt.After(b.PerformedAt)
	}
	return a.AttemptCreatedAt.After(b.AttemptCreatedAt)
}
