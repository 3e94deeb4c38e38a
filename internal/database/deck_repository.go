package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// DeckRepository handles database operations for decks
type DeckRepository struct{}

// NewDeckRepository creates a new repository instance
func NewDeckRepository() *DeckRepository {
	return &DeckRepository{}
}

// GetByID returns a deck by ID
func (r *DeckRepository) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	var deck models.Deck
	err := DB.GetContext(ctx, &deck, "SELECT * FROM decks WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %v", err)
	}
	return &deck, nil
}

// GetByUser returns all decks owned by a user
func (r *DeckRepository) GetByUser(ctx context.Context, userID int64) ([]models.Deck, error) {
	var decks []models.Deck
	err := DB.SelectContext(ctx, &decks, "SELECT * FROM decks WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %v", err)
	}
	return decks, nil
}

// GetByName returns a user's deck by name
func (r *DeckRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Deck, error) {
	var deck models.Deck
	err := DB.GetContext(ctx, &deck, "SELECT * FROM decks WHERE user_id = $1 AND name = $2", userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck by name: %v", err)
	}
	return &deck, nil
}

// Create inserts a new deck and fills in its generated ID
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := "INSERT INTO decks (user_id, name, language) VALUES ($1, $2, $3)"
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, query+" RETURNING id", deck.UserID, deck.Name, deck.Language).Scan(&deck.ID)
	}

	result, err := DB.ExecContext(ctx, query, deck.UserID, deck.Name, deck.Language)
	if err != nil {
		return fmt.Errorf("failed to create deck: %v", err)
	}
	deck.ID, err = result.LastInsertId()
	return err
}

// GetOrCreate returns the user's deck with the given name, creating it on
// first use
func (r *DeckRepository) GetOrCreate(ctx context.Context, userID int64, name, language string) (*models.Deck, error) {
	deck, err := r.GetByName(ctx, userID, name)
	if err == nil {
		return deck, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := &models.Deck{UserID: userID, Name: name, Language: language}
	if err := r.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
