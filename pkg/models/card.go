package models

import "time"

// Card represents a two-sided flashcard, optionally linked to the word it
// was generated from
type Card struct {
	ID        int64     `json:"id" db:"id"`
	DeckID    int64     `json:"deck_id" db:"deck_id"`
	WordID    *int64    `json:"word_id" db:"word_id"`
	Front     string    `json:"front" db:"front"`
	Back      string    `json:"back" db:"back"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
