package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/lexibot/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func streakState(current, longest, freezes int, last *time.Time) models.StreakState {
	return models.StreakState{
		UserID:           1,
		CurrentStreak:    current,
		LongestStreak:    longest,
		FreezesAvailable: freezes,
		LastActivityDate: last,
	}
}

func TestProjectStreakFirstActivity(t *testing.T) {
	state := ProjectStreak(streakState(0, 0, 0, nil), day(2026, 8, 23), true)

	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 1, state.LongestStreak)
	assert.Equal(t, day(2026, 8, 23), *state.LastActivityDate)
}

func TestProjectStreakConsecutiveDay(t *testing.T) {
	last := day(2026, 8, 22)
	state := ProjectStreak(streakState(5, 10, 0, &last), day(2026, 8, 23), true)

	assert.Equal(t, 6, state.CurrentStreak)
	assert.Equal(t, 10, state.LongestStreak)
}

func TestProjectStreakSameDayIdempotent(t *testing.T) {
	last := day(2026, 8, 22)
	state := streakState(5, 10, 2, &last)

	once := ProjectStreak(state, day(2026, 8, 23), true)
	twice := ProjectStreak(once, day(2026, 8, 23), true)

	assert.Equal(t, once, twice)
	assert.Equal(t, 6, twice.CurrentStreak)
	assert.Equal(t, 2, twice.FreezesAvailable)
}

func TestProjectStreakFreezeBridgesOneMissedDay(t *testing.T) {
	last := day(2026, 8, 21)
	state := ProjectStreak(streakState(5, 5, 1, &last), day(2026, 8, 23), true)

	assert.Equal(t, 6, state.CurrentStreak)
	assert.Equal(t, 0, state.FreezesAvailable)
	assert.Equal(t, 6, state.LongestStreak)
}

func TestProjectStreakGapWithoutFreezeResets(t *testing.T) {
	last := day(2026, 8, 21)
	state := ProjectStreak(streakState(10, 10, 0, &last), day(2026, 8, 23), true)

	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 10, state.LongestStreak)
}

func TestProjectStreakLongGapResetsEvenWithFreeze(t *testing.T) {
	last := day(2026, 8, 19)
	state := ProjectStreak(streakState(10, 10, 3, &last), day(2026, 8, 23), true)

	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 3, state.FreezesAvailable, "freezes only bridge a single missed day")
}

func TestProjectStreakSecondGapAfterFreezeExhausted(t *testing.T) {
	last := day(2026, 8, 17)
	state := streakState(5, 5, 1, &last)

	state = ProjectStreak(state, day(2026, 8, 19), true) // consumes the freeze
	assert.Equal(t, 6, state.CurrentStreak)
	assert.Equal(t, 0, state.FreezesAvailable)

	state = ProjectStreak(state, day(2026, 8, 21), true) // no freeze left
	assert.Equal(t, 1, state.CurrentStreak)
}

func TestProjectStreakNoActivity(t *testing.T) {
	last := day(2026, 8, 22)
	before := streakState(5, 10, 1, &last)

	after := ProjectStreak(before, day(2026, 8, 23), false)

	assert.Equal(t, before, after)
}

func TestProjectStreakNormalizesTimestamps(t *testing.T) {
	// A mid-day timestamp must count as the same calendar date
	last := time.Date(2026, 8, 22, 23, 50, 0, 0, time.UTC)
	state := ProjectStreak(streakState(3, 3, 0, &last), time.Date(2026, 8, 23, 0, 5, 0, 0, time.UTC), true)

	assert.Equal(t, 4, state.CurrentStreak)
	assert.Equal(t, day(2026, 8, 23), *state.LastActivityDate)
}

func TestProjectStreakUpdatesLongest(t *testing.T) {
	last := day(2026, 8, 22)
	state := ProjectStreak(streakState(10, 10, 0, &last), day(2026, 8, 23), true)

	assert.Equal(t, 11, state.CurrentStreak)
	assert.Equal(t, 11, state.LongestStreak)
}
