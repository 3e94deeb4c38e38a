package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// CardRepository handles database operations for flashcards
type CardRepository struct{}

// NewCardRepository creates a new repository instance
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

// GetByID returns a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	var card models.Card
	err := DB.GetContext(ctx, &card, "SELECT * FROM cards WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %v", err)
	}
	return &card, nil
}

// Create inserts a new card and fills in its generated ID
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := "INSERT INTO cards (deck_id, word_id, front, back) VALUES ($1, $2, $3, $4)"
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, query+" RETURNING id",
			card.DeckID, card.WordID, card.Front, card.Back).Scan(&card.ID)
	}

	result, err := DB.ExecContext(ctx, query, card.DeckID, card.WordID, card.Front, card.Back)
	if err != nil {
		return fmt.Errorf("failed to create card: %v", err)
	}
	card.ID, err = result.LastInsertId()
	return err
}
