package models

import "time"

// ItemKind identifies which physical entity a review item schedules
type ItemKind string

const (
	// ItemKindCard marks items backed by a flashcard
	ItemKindCard ItemKind = "card"
	// ItemKindWord marks items backed by a vocabulary word
	ItemKindWord ItemKind = "word"
)

// ReviewableItem is one schedulable unit for spaced repetition. Cards and
// words carry identical review state, so both map onto this single type
// with Kind/SourceID pointing back at the owning row.
type ReviewableItem struct {
	ID             int64      `json:"id" db:"id"`
	DeckID         int64      `json:"deck_id" db:"deck_id"`
	Kind           ItemKind   `json:"kind" db:"kind"`
	SourceID       int64      `json:"source_id" db:"source_id"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`             // consecutive successful reviews since last lapse
	IntervalDays   int        `json:"interval_days" db:"interval_days"`         // days until next scheduled review
	EasinessFactor float64    `json:"easiness_factor" db:"easiness_factor"`     // SM-2 EF, never below 1.3
	Lapses         int        `json:"lapses" db:"lapses"`                       // failed reviews since last leech reset
	IsLeech        bool       `json:"is_leech" db:"is_leech"`                   // sticky once lapses reach the threshold
	Familiarity    int        `json:"familiarity" db:"familiarity"`             // 0-5 diagnostic score, not used for scheduling
	TotalReviews   int        `json:"total_reviews" db:"total_reviews"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewAt   time.Time  `json:"next_review_at" db:"next_review_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// NewReviewableItem returns the initial review state for a freshly created
// card or word: immediately due, default easiness factor
func NewReviewableItem(deckID int64, kind ItemKind, sourceID int64, now time.Time) ReviewableItem {
	return ReviewableItem{
		DeckID:         deckID,
		Kind:           kind,
		SourceID:       sourceID,
		EasinessFactor: 2.5,
		NextReviewAt:   now,
	}
}

// IsDue reports whether the item should be reviewed at the given time
func (r *ReviewableItem) IsDue(now time.Time) bool {
	return !r.NextReviewAt.After(now)
}

// ReviewEvent records a single submitted review. Events are appended to the
// analytics sink and never read back by the scheduler.
type ReviewEvent struct {
	ID             int64     `json:"id" db:"id"`
	ItemID         int64     `json:"item_id" db:"item_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Quality        int       `json:"quality" db:"quality"`
	ResponseTimeMS *int      `json:"response_time_ms" db:"response_time_ms"`
	OccurredAt     time.Time `json:"occurred_at" db:"occurred_at"`
}

// SessionQueue is the ordered output of session curation: due items first
// (most overdue leading), then fallback items by weakness, capped at the
// requested size
type SessionQueue struct {
	SessionID string           `json:"session_id"`
	Items     []ReviewableItem `json:"items"`
}
