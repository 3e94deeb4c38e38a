package models

import "time"

// StreakState tracks a user's daily activity streak. Dates are calendar
// days in UTC; a streak advances at most once per day.
type StreakState struct {
	UserID           int64      `json:"user_id" db:"user_id"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	FreezesAvailable int        `json:"freezes_available" db:"freezes_available"`
}
