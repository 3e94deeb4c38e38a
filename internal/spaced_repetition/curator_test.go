package spaced_repetition

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

// fakeSource serves candidate items from memory, applying the same scope
// and exclusion filtering the real repository does
type fakeSource struct {
	items []models.ReviewableItem
}

func (f *fakeSource) QueryDue(_ context.Context, scope Scope, before time.Time, limit int) ([]models.ReviewableItem, error) {
	var out []models.ReviewableItem
	for _, item := range f.items {
		if !f.inScope(item, scope) || !item.IsDue(before) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextReviewAt.Before(out[j].NextReviewAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) QueryWeakest(_ context.Context, scope Scope, excluding []int64, limit int) ([]models.ReviewableItem, error) {
	skip := make(map[int64]bool, len(excluding))
	for _, id := range excluding {
		skip[id] = true
	}
	var out []models.ReviewableItem
	for _, item := range f.items {
		if !f.inScope(item, scope) || skip[item.ID] {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EasinessFactor != out[j].EasinessFactor {
			return out[i].EasinessFactor < out[j].EasinessFactor
		}
		return out[i].NextReviewAt.Before(out[j].NextReviewAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) inScope(item models.ReviewableItem, scope Scope) bool {
	return scope.DeckID == 0 || item.DeckID == scope.DeckID
}

func testItem(id, deckID int64, ef float64, next time.Time) models.ReviewableItem {
	return models.ReviewableItem{ID: id, DeckID: deckID, Kind: models.ItemKindCard, EasinessFactor: ef, NextReviewAt: next}
}

func TestCurateDueBeforeFallback(t *testing.T) {
	now := testNow
	source := &fakeSource{items: []models.ReviewableItem{
		// Due: overdue by 1, 5 and 2 days, deliberately out of order
		testItem(1, 1, 2.5, now.AddDate(0, 0, -1)),
		testItem(2, 1, 2.5, now.AddDate(0, 0, -5)),
		testItem(3, 1, 2.5, now.AddDate(0, 0, -2)),
		// Not due: varying easiness factors
		testItem(4, 1, 2.8, now.AddDate(0, 0, 3)),
		testItem(5, 1, 1.4, now.AddDate(0, 0, 4)),
		testItem(6, 1, 2.1, now.AddDate(0, 0, 2)),
		testItem(7, 1, 3.0, now.AddDate(0, 0, 1)),
	}}

	queue, err := NewCurator(source).Curate(context.Background(), Scope{UserID: 1}, now, 5)
	require.NoError(t, err)
	require.Len(t, queue.Items, 5)
	assert.NotEmpty(t, queue.SessionID)

	// Most overdue first, then the two weakest non-due items
	ids := make([]int64, 0, len(queue.Items))
	for _, item := range queue.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int64{2, 3, 1, 5, 6}, ids)
}

func TestCurateFallbackTieBreaksOnNextReview(t *testing.T) {
	now := testNow
	source := &fakeSource{items: []models.ReviewableItem{
		testItem(1, 1, 2.0, now.AddDate(0, 0, 5)),
		testItem(2, 1, 2.0, now.AddDate(0, 0, 1)),
	}}

	queue, err := NewCurator(source).Curate(context.Background(), Scope{UserID: 1}, now, 2)
	require.NoError(t, err)
	require.Len(t, queue.Items, 2)
	assert.Equal(t, int64(2), queue.Items[0].ID, "equal EF breaks the tie by sooner next review")
}

func TestCurateCapsAtLimit(t *testing.T) {
	now := testNow
	var items []models.ReviewableItem
	for i := int64(1); i <= 10; i++ {
		items = append(items, testItem(i, 1, 2.5, now.AddDate(0, 0, -int(i))))
	}
	source := &fakeSource{items: items}

	queue, err := NewCurator(source).Curate(context.Background(), Scope{UserID: 1}, now, 4)
	require.NoError(t, err)
	assert.Len(t, queue.Items, 4)
}

func TestCurateScopedToDeck(t *testing.T) {
	now := testNow
	source := &fakeSource{items: []models.ReviewableItem{
		testItem(1, 1, 2.5, now.AddDate(0, 0, -1)),
		testItem(2, 2, 2.5, now.AddDate(0, 0, -3)),
	}}

	queue, err := NewCurator(source).Curate(context.Background(), Scope{UserID: 1, DeckID: 1}, now, 5)
	require.NoError(t, err)
	require.Len(t, queue.Items, 1)
	assert.Equal(t, int64(1), queue.Items[0].ID)
}

func TestCurateDeduplicates(t *testing.T) {
	now := testNow
	// A source that leaks the same id in both pools must not produce a
	// queue with duplicates
	source := &fakeSource{items: []models.ReviewableItem{
		testItem(1, 1, 2.5, now.AddDate(0, 0, -1)),
		testItem(1, 1, 2.5, now.AddDate(0, 0, -1)),
		testItem(2, 1, 2.5, now.AddDate(0, 0, 1)),
	}}

	queue, err := NewCurator(source).Curate(context.Background(), Scope{UserID: 1}, now, 5)
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, item := range queue.Items {
		seen[item.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "item %d appears more than once", id)
	}
}

func TestCurateEmptyScope(t *testing.T) {
	queue, err := NewCurator(&fakeSource{}).Curate(context.Background(), Scope{UserID: 1}, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, queue.Items)
	assert.NotEmpty(t, queue.SessionID)
}

func TestCurateRejectsBadLimit(t *testing.T) {
	curator := NewCurator(&fakeSource{})

	_, err := curator.Curate(context.Background(), Scope{UserID: 1}, testNow, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = curator.Curate(context.Background(), Scope{UserID: 1}, testNow, -3)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestCurateSessionIDsUnique(t *testing.T) {
	curator := NewCurator(&fakeSource{})

	a, err := curator.Curate(context.Background(), Scope{UserID: 1}, testNow, 1)
	require.NoError(t, err)
	b, err := curator.Curate(context.Background(), Scope{UserID: 1}, testNow, 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
}
