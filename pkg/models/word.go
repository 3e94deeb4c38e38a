package models

import "time"

// Word represents a vocabulary word to be learned
type Word struct {
	ID          int64     `json:"id" db:"id"`
	DeckID      int64     `json:"deck_id" db:"deck_id"`
	Term        string    `json:"term" db:"term"`
	Translation string    `json:"translation" db:"translation"`
	Context     string    `json:"context" db:"context"` // Example sentence using the term
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
