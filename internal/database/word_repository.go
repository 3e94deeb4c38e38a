package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// GetByDeck returns all words in a deck
func (r *WordRepository) GetByDeck(ctx context.Context, deckID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT * FROM words WHERE deck_id = $1 ORDER BY term", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by deck: %v", err)
	}
	return words, nil
}

// GetByTerm returns a word in a deck by its term
func (r *WordRepository) GetByTerm(ctx context.Context, deckID int64, term string) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE deck_id = $1 AND term = $2", deckID, term)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by term: %v", err)
	}
	return &word, nil
}

// Create inserts a new word and fills in its generated ID
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	query := "INSERT INTO words (deck_id, term, translation, context) VALUES ($1, $2, $3, $4)"
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, query+" RETURNING id",
			word.DeckID, word.Term, word.Translation, word.Context).Scan(&word.ID)
	}

	result, err := DB.ExecContext(ctx, query, word.DeckID, word.Term, word.Translation, word.Context)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}
	word.ID, err = result.LastInsertId()
	return err
}
