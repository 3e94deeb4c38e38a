package models

import "time"

// PracticeSession is the metadata record created when a session is curated.
// It exists for analytics; the scheduler itself never reads it back.
type PracticeSession struct {
	ID          string    `json:"id" db:"id"` // UUID issued by the curator
	UserID      int64     `json:"user_id" db:"user_id"`
	DeckID      *int64    `json:"deck_id" db:"deck_id"` // nil when the session spans all decks
	SessionType string    `json:"session_type" db:"session_type"`
	ItemCount   int       `json:"item_count" db:"item_count"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
}
