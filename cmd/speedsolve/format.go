package main

import (
	"fmt"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
)

func printBests(b *attempttypes.BestsInfo) {
	rows := []struct {
		kind attemptdomain.AverageKind
		best *attempttypes.BestInfo
	}{
		{attemptdomain.KindSingle, b.Single},
		{attemptdomain.KindAo5, b.Ao5},
		{attemptdomain.KindAo12, b.Ao12},
		{attemptdomain.KindAo100, b.Ao100},
	}
	for _, r := range rows {
		if r.best == nil {
			fmt.Printf("  %-6s -\n", r.kind)
			continue
		}
		fmt.Printf("  %-6s %s  (%s)\n", r.kind, formatMillis(r.best.Milliseconds), r.best.PerformedAt.Format("2006-01-02 15:04"))
	}
}

// formatMillis renders a result the way timers show it: 9.87, 1:02.35.
func formatMillis(ms int) string {
	cs := (ms + 5) / 10
	minutes := cs / 6000
	seconds := (cs % 6000) / 100
	hundredths := cs % 100
	if minutes > 0 {
		return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, hundredths)
	}
	return fmt.Sprintf("%d.%02d", seconds, hundredths)
}
