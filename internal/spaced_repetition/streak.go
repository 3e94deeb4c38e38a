package spaced_repetition

import (
	"time"

	"github.com/example/lexibot/pkg/models"
)

// ProjectStreak advances a user's streak state for one calendar day of
// activity. It is invoked at most usefully once per day; repeat calls for
// the same day are no-ops, so review handlers may call it after every
// review without double counting. Days are UTC calendar dates.
func ProjectStreak(state models.StreakState, day time.Time, hadActivity bool) models.StreakState {
	if !hadActivity {
		return state
	}

	today := truncateToDay(day)
	var last *time.Time
	if state.LastActivityDate != nil {
		d := truncateToDay(*state.LastActivityDate)
		last = &d
	}

	switch {
	case last != nil && last.Equal(today):
		// Already counted today
		return state
	case last != nil && last.Equal(today.AddDate(0, 0, -1)):
		state.CurrentStreak++
	case last != nil && last.Equal(today.AddDate(0, 0, -2)) && state.FreezesAvailable > 0:
		// One missed day is forgivable if the user has a freeze banked
		state.FreezesAvailable--
		state.CurrentStreak++
	default:
		// Longer gap, or first ever activity
		state.CurrentStreak = 1
	}

	state.LastActivityDate = &today
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	return state
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
