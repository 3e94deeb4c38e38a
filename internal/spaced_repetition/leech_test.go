package spaced_repetition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLeech(t *testing.T) {
	assert.False(t, IsLeech(0, DefaultLeechThreshold))
	assert.False(t, IsLeech(7, DefaultLeechThreshold))
	assert.True(t, IsLeech(8, DefaultLeechThreshold))
	assert.True(t, IsLeech(12, DefaultLeechThreshold))
}

func TestResetLeech(t *testing.T) {
	item := newItem()
	item.Lapses = 10
	item.IsLeech = true
	item.Repetitions = 2
	item.IntervalDays = 6
	item.EasinessFactor = 1.7
	item.TotalReviews = 25

	reset := ResetLeech(item)

	assert.Equal(t, 0, reset.Lapses)
	assert.False(t, reset.IsLeech)

	// Everything else must survive the reset
	assert.Equal(t, item.Repetitions, reset.Repetitions)
	assert.Equal(t, item.IntervalDays, reset.IntervalDays)
	assert.Equal(t, item.EasinessFactor, reset.EasinessFactor)
	assert.Equal(t, item.TotalReviews, reset.TotalReviews)
	assert.Equal(t, item.NextReviewAt, reset.NextReviewAt)
}

func TestResetThenSuccessStaysCleared(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Lapses = 8
	item.IsLeech = true

	item = ResetLeech(item)
	item = engine.Update(item, 5, nil, testNow)

	assert.False(t, item.IsLeech)
	assert.Equal(t, 0, item.Lapses)
}
