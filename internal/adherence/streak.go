package adherence

import (
	"math"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
)

// Streak counts consecutive calendar days ending today that have at least one event.
// A day without events stops the walk, so a missed today yields 0.
func Streak(events []int64, today time.Time) int {
	days := eventDays(events)
	streak := 0
	for day := normalize.StartOfDay(today.In(time.Local)); days[day.UnixMilli()]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// AdherenceRatio is the percentage of calendar days since startedAt (inclusive of both
// ends) that have at least one event. It measures days elapsed, not days scheduled.
func AdherenceRatio(events []int64, startedAt int64, today time.Time) float64 {
	start := normalize.StartOfDay(time.UnixMilli(startedAt))
	end := normalize.StartOfDay(today.In(time.Local))
	if end.Before(start) {
		return 0
	}
	elapsed := normalize.DaysBetween(start, end) + 1

	hits := 0
	for day := range eventDays(events) {
		if day >= start.UnixMilli() && day <= end.UnixMilli() {
			hits++
		}
	}
	return Clamp(math.Round(float64(hits) / float64(elapsed) * 100))
}

func eventDays(events []int64) map[int64]bool {
	days := make(map[int64]bool, len(events))
	for _, ms := range events {
		days[normalize.ToDateKey(ms)] = true
	}
	return days
}
