package spaced_repetition

import "github.com/example/lexibot/pkg/models"

// DefaultLeechThreshold is the lapse count at which an item becomes a leech
const DefaultLeechThreshold = 8

// IsLeech reports whether the given lapse count has reached the threshold.
// The flag itself is sticky: Update ORs this into the item, and only
// ResetLeech may clear it.
func IsLeech(lapses, threshold int) bool {
	return lapses >= threshold
}

// ResetLeech clears an item's leech flag and lapse counter, leaving every
// other field untouched. This is the only path that clears the flag; it is
// triggered by an explicit learner action, never by a successful review.
func ResetLeech(item models.ReviewableItem) models.ReviewableItem {
	item.Lapses = 0
	item.IsLeech = false
	return item
}
