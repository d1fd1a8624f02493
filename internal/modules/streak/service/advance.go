package service

import (
	"time"

	"paceline.app/community/internal/entity"
)

// Advance is the streak state machine. runDate is a UTC calendar date in
// entity.DateLayout. A run on the day after the last run extends the streak;
// a run on the same day changes nothing; any other date, including one
// before the last run, starts a new streak of one.
func Advance(prev *entity.UserStreak, runDate string) (entity.UserStreak, bool) {
	if prev == nil {
		return entity.UserStreak{
			CurrentStreak:   1,
			LongestStreak:   1,
			LastRunDate:     runDate,
			StreakStartDate: runDate,
		}, true
	}

	if prev.LastRunDate == runDate {
		return *prev, false
	}

	next := *prev
	if daysBetween(prev.LastRunDate, runDate) == 1 {
		next.CurrentStreak++
	} else {
		next.CurrentStreak = 1
		next.StreakStartDate = runDate
	}
	next.LastRunDate = runDate
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	return next, true
}

// daysBetween returns to-from in whole days, or 0 when either date is
// unreadable.
func daysBetween(from, to string) int {
	a, err := time.Parse(entity.DateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(entity.DateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
