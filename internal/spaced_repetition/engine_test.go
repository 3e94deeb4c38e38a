package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

var testNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func newItem() models.ReviewableItem {
	return models.NewReviewableItem(1, models.ItemKindCard, 1, testNow)
}

func intPtr(v int) *int { return &v }

func TestUpdateFirstSuccess(t *testing.T) {
	engine := NewEngine()
	item := engine.Update(newItem(), 5, nil, testNow)

	assert.Equal(t, 1, item.Repetitions)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 1, item.TotalReviews)
	assert.GreaterOrEqual(t, item.EasinessFactor, 2.5)
	require.NotNil(t, item.LastReviewedAt)
	assert.Equal(t, testNow, *item.LastReviewedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 1), item.NextReviewAt)
}

func TestUpdateSecondSuccess(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Repetitions = 1
	item.IntervalDays = 1

	item = engine.Update(item, 5, nil, testNow)

	assert.Equal(t, 2, item.Repetitions)
	assert.Equal(t, 6, item.IntervalDays)
}

func TestUpdateThirdSuccessUsesPriorIntervalAndEF(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Repetitions = 2
	item.IntervalDays = 6
	item.EasinessFactor = 2.5

	item = engine.Update(item, 5, nil, testNow)

	// round(6 * 2.5) with the EF from before this review
	assert.Equal(t, 3, item.Repetitions)
	assert.Equal(t, 15, item.IntervalDays)
}

func TestUpdateZeroPriorIntervalTreatedAsOne(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Repetitions = 5
	item.IntervalDays = 0
	item.EasinessFactor = 2.5

	item = engine.Update(item, 4, nil, testNow)

	assert.Equal(t, 3, item.IntervalDays) // round(1 * 2.5)
}

func TestUpdateFailureResetsProgress(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Repetitions = 5
	item.IntervalDays = 30

	item = engine.Update(item, 0, nil, testNow)

	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 1, item.Lapses)
	assert.Equal(t, testNow.AddDate(0, 0, 1), item.NextReviewAt)
}

func TestUpdateQualityBoundary(t *testing.T) {
	engine := NewEngine()

	// Quality 3 is a success, not a failure
	item := newItem()
	item.Repetitions = 1
	item.IntervalDays = 1
	item = engine.Update(item, 3, nil, testNow)
	assert.Equal(t, 2, item.Repetitions)
	assert.Equal(t, 0, item.Lapses)

	// Quality 2 is a failure
	item = newItem()
	item.Repetitions = 3
	item.IntervalDays = 15
	item = engine.Update(item, 2, nil, testNow)
	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, 1, item.Lapses)
}

func TestUpdateClampsQuality(t *testing.T) {
	engine := NewEngine()

	item := engine.Update(newItem(), -5, nil, testNow)
	assert.Equal(t, 1, item.Lapses, "negative quality is treated as 0")

	item = engine.Update(newItem(), 10, nil, testNow)
	assert.Equal(t, 1, item.Repetitions, "quality above 5 is treated as 5")
}

func TestUpdateEasinessFactor(t *testing.T) {
	engine := NewEngine()

	item := newItem()
	item = engine.Update(item, 5, nil, testNow)
	assert.Greater(t, item.EasinessFactor, 2.5)

	item = newItem()
	item = engine.Update(item, 1, nil, testNow)
	assert.Less(t, item.EasinessFactor, 2.5)
}

func TestUpdateEasinessFactorFloor(t *testing.T) {
	engine := NewEngine()
	item := newItem()

	for i := 0; i < 20; i++ {
		item = engine.Update(item, 0, nil, testNow)
		assert.GreaterOrEqual(t, item.EasinessFactor, 1.3)
	}
	assert.Equal(t, 1.3, item.EasinessFactor)
}

func TestUpdateFastAnswerBonus(t *testing.T) {
	engine := NewEngine()
	base := newItem()
	base.Repetitions = 2
	base.IntervalDays = 6
	base.EasinessFactor = 2.5

	tests := []struct {
		name         string
		quality      int
		responseMS   *int
		wantInterval int
	}{
		{"fast perfect answer gets 10% bonus", 5, intPtr(2000), 16},
		{"exactly 3000ms does not qualify", 5, intPtr(3000), 15},
		{"slow answer gets no bonus", 5, intPtr(5000), 15},
		{"no measurement gets no bonus", 5, nil, 15},
		{"quality 3 gets no bonus even when fast", 3, intPtr(1000), 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := engine.Update(base, tc.quality, tc.responseMS, testNow)
			assert.Equal(t, tc.wantInterval, item.IntervalDays)
		})
	}
}

func TestUpdateNoBonusOnFailure(t *testing.T) {
	engine := NewEngine()
	item := newItem()
	item.Repetitions = 3
	item.IntervalDays = 15

	item = engine.Update(item, 2, intPtr(1000), testNow)

	assert.Equal(t, 1, item.IntervalDays)
}

func TestUpdateLeechDetection(t *testing.T) {
	engine := NewEngine()

	item := newItem()
	item.Lapses = 7
	item = engine.Update(item, 0, nil, testNow)
	assert.Equal(t, 8, item.Lapses)
	assert.True(t, item.IsLeech)

	// Leech status is sticky: a success must not clear it
	item = engine.Update(item, 5, nil, testNow)
	assert.True(t, item.IsLeech)

	item = newItem()
	item.Lapses = 5
	item = engine.Update(item, 0, nil, testNow)
	assert.Equal(t, 6, item.Lapses)
	assert.False(t, item.IsLeech)
}

func TestUpdateIntervalGrowthMonotonic(t *testing.T) {
	engine := NewEngine()
	item := newItem()

	prev := 0
	for i := 0; i < 10; i++ {
		item = engine.Update(item, 4, nil, testNow)
		if i >= 2 {
			assert.GreaterOrEqual(t, item.IntervalDays, prev)
		}
		prev = item.IntervalDays
	}
	assert.Equal(t, 10, item.Repetitions)
	assert.Equal(t, 10, item.TotalReviews)
}

func TestUpdateFamiliarityClamped(t *testing.T) {
	engine := NewEngine()

	item := newItem()
	for i := 0; i < 8; i++ {
		item = engine.Update(item, 5, nil, testNow)
	}
	assert.Equal(t, 5, item.Familiarity)

	for i := 0; i < 8; i++ {
		item = engine.Update(item, 0, nil, testNow)
	}
	assert.Equal(t, 0, item.Familiarity)
}
