package service

import (
	"github.com/cloudly/miniapp/internal/model"
)

// applyStreak decides how saving a journal entry for journalDate changes a
// streak of the given length ending on lastStreakDate. exists reports
// whether the user has an entry for a date, journalDate included.
//
// An entry for today extends a streak that ended yesterday. A back-filled
// entry that joins existing days into a run longer than the current streak
// replaces it. Future entries never count.
func applyStreak(streak int, lastStreakDate, journalDate, today model.Date, exists func(model.Date) bool) (int, model.Date, bool) {
	switch {
	case journalDate.After(today):
		return streak, lastStreakDate, false

	case journalDate.Equal(today):
		yesterday := today.AddDays(-1)
		if exists(yesterday) && lastStreakDate.Equal(yesterday) {
			return streak + 1, today, true
		}
		return streak, lastStreakDate, false

	default:
		if !exists(journalDate.AddDays(1)) {
			return streak, lastStreakDate, false
		}

		start, end := journalDate, journalDate
		for exists(start.AddDays(-1)) {
			start = start.AddDays(-1)
		}
		for !end.Equal(today) && exists(end.AddDays(1)) {
			end = end.AddDays(1)
		}

		run := daysBetween(start, end) + 1
		if run > streak {
			return run, end, true
		}
		return streak, lastStreakDate, false
	}
}

func daysBetween(from, to model.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}
