package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/internal/spaced_repetition"
	"github.com/example/lexibot/pkg/models"
)

// ItemRepository handles database operations for review items. It is the
// durable store behind the scheduler and implements the curator's
// ItemSource interface.
type ItemRepository struct{}

// NewItemRepository creates a new repository instance
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// GetByID returns a review item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.ReviewableItem, error) {
	var item models.ReviewableItem
	err := DB.GetContext(ctx, &item, "SELECT * FROM review_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review item: %v", err)
	}
	return &item, nil
}

// GetBySource returns the review item backing a card or word row
func (r *ItemRepository) GetBySource(ctx context.Context, kind models.ItemKind, sourceID int64) (*models.ReviewableItem, error) {
	var item models.ReviewableItem
	err := DB.GetContext(ctx, &item, "SELECT * FROM review_items WHERE kind = $1 AND source_id = $2", kind, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review item by source: %v", err)
	}
	return &item, nil
}

// Create inserts a new review item and fills in its generated ID
func (r *ItemRepository) Create(ctx context.Context, item *models.ReviewableItem) error {
	query := `
		INSERT INTO review_items (
			deck_id, kind, source_id, repetitions, interval_days,
			easiness_factor, lapses, is_leech, familiarity, total_reviews,
			last_reviewed_at, next_review_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, query+" RETURNING id",
			item.DeckID, item.Kind, item.SourceID, item.Repetitions, item.IntervalDays,
			item.EasinessFactor, item.Lapses, item.IsLeech, item.Familiarity, item.TotalReviews,
			item.LastReviewedAt, item.NextReviewAt,
		).Scan(&item.ID)
	}

	result, err := DB.ExecContext(ctx, query,
		item.DeckID, item.Kind, item.SourceID, item.Repetitions, item.IntervalDays,
		item.EasinessFactor, item.Lapses, item.IsLeech, item.Familiarity, item.TotalReviews,
		item.LastReviewedAt, item.NextReviewAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review item: %v", err)
	}
	item.ID, err = result.LastInsertId()
	return err
}

// Save persists the mutable review state of an existing item
func (r *ItemRepository) Save(ctx context.Context, item *models.ReviewableItem) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE review_items SET
			repetitions = $1,
			interval_days = $2,
			easiness_factor = $3,
			lapses = $4,
			is_leech = $5,
			familiarity = $6,
			total_reviews = $7,
			last_reviewed_at = $8,
			next_review_at = $9,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $10`,
		item.Repetitions, item.IntervalDays, item.EasinessFactor,
		item.Lapses, item.IsLeech, item.Familiarity, item.TotalReviews,
		item.LastReviewedAt, item.NextReviewAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save review item: %v", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryDue returns items in scope due at or before the given time, most
// overdue first, capped at limit
func (r *ItemRepository) QueryDue(ctx context.Context, scope spaced_repetition.Scope, before time.Time, limit int) ([]models.ReviewableItem, error) {
	var items []models.ReviewableItem
	query := `
		SELECT ri.* FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1
		  AND ($2 = 0 OR ri.deck_id = $2)
		  AND ri.next_review_at <= $3
		ORDER BY ri.next_review_at ASC
		LIMIT $4
	`
	err := DB.SelectContext(ctx, &items, query, scope.UserID, scope.DeckID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due items: %v", err)
	}
	return items, nil
}

// QueryWeakest returns non-due items in scope ordered by easiness factor
// then upcoming review date, skipping the given ids, capped at limit
func (r *ItemRepository) QueryWeakest(ctx context.Context, scope spaced_repetition.Scope, excluding []int64, limit int) ([]models.ReviewableItem, error) {
	nowExpr := "NOW()"
	if DB.DriverName() != "postgres" {
		nowExpr = "datetime('now')"
	}

	query := fmt.Sprintf(`
		SELECT ri.* FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = ?
		  AND (? = 0 OR ri.deck_id = ?)
		  AND ri.next_review_at > %s
		ORDER BY ri.easiness_factor ASC, ri.next_review_at ASC
		LIMIT ?
	`, nowExpr)
	args := []interface{}{scope.UserID, scope.DeckID, scope.DeckID, limit}

	if len(excluding) > 0 {
		query = fmt.Sprintf(`
			SELECT ri.* FROM review_items ri
			JOIN decks d ON ri.deck_id = d.id
			WHERE d.user_id = ?
			  AND (? = 0 OR ri.deck_id = ?)
			  AND ri.next_review_at > %s
			  AND ri.id NOT IN (?)
			ORDER BY ri.easiness_factor ASC, ri.next_review_at ASC
			LIMIT ?
		`, nowExpr)
		var err error
		query, args, err = sqlx.In(query, scope.UserID, scope.DeckID, scope.DeckID, excluding, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to build fallback query: %v", err)
		}
	}

	var items []models.ReviewableItem
	err := DB.SelectContext(ctx, &items, DB.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weakest items: %v", err)
	}
	return items, nil
}

// LeechesForUser returns the user's leech-flagged items, most lapsed first
func (r *ItemRepository) LeechesForUser(ctx context.Context, userID int64) ([]models.ReviewableItem, error) {
	var items []models.ReviewableItem
	err := DB.SelectContext(ctx, &items, `
		SELECT ri.* FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1 AND ri.is_leech = true
		ORDER BY ri.lapses DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leeches: %v", err)
	}
	return items, nil
}

// OwnerOf returns the user id owning the deck an item belongs to
func (r *ItemRepository) OwnerOf(ctx context.Context, item *models.ReviewableItem) (int64, error) {
	var userID int64
	err := DB.GetContext(ctx, &userID, "SELECT user_id FROM decks WHERE id = $1", item.DeckID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve item owner: %v", err)
	}
	return userID, nil
}
