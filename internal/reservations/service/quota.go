package service

import (
	"time"

	"qota/pkg/model"
)

// selectPool maps a reservation start date to the quota pool it debits.
// Only the current calendar year and the next one are bookable.
func selectPool(start, now time.Time) (string, bool) {
	switch start.Year() {
	case now.Year():
		return model.PoolCurrentYear, true
	case now.Year() + 1:
		return model.PoolNextYear, true
	default:
		return "", false
	}
}

// yearsSpanned returns the distinct calendar years covered by [start, end],
// for the holiday lookups.
func yearsSpanned(start, end time.Time) []int {
	years := []int{start.Year()}
	if end.Year() != start.Year() {
		for y := start.Year() + 1; y <= end.Year(); y++ {
			years = append(years, y)
		}
	}
	return years
}

// withinInclusive reports whether the instant t lies inside [start, end],
// both ends included. Holidays are anchored at noon, so with midnight
// reservation bounds a check-in day holiday counts and a checkout day
// holiday does not.
func withinInclusive(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// countHolidaysWithin counts how many of the given holiday instants fall
// inside [start, end].
func countHolidaysWithin(holidays []time.Time, start, end time.Time) int {
	count := 0
	for _, h := range holidays {
		if withinInclusive(h, start, end) {
			count++
		}
	}
	return count
}
