package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// ReviewEventRepository is the append-only sink for review events. Events
// feed analytics and leaderboards; the scheduler never reads them back.
type ReviewEventRepository struct{}

// NewReviewEventRepository creates a new repository instance
func NewReviewEventRepository() *ReviewEventRepository {
	return &ReviewEventRepository{}
}

// Create appends a review event
func (r *ReviewEventRepository) Create(ctx context.Context, event *models.ReviewEvent) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO review_events (item_id, user_id, quality, response_time_ms, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ItemID, event.UserID, event.Quality, event.ResponseTimeMS, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to create review event: %v", err)
	}
	return nil
}

// CountForUserOn returns the number of reviews a user submitted on the
// given calendar day; used by daily goal reporting
func (r *ReviewEventRepository) CountForUserOn(ctx context.Context, userID int64, dayStart, dayEnd time.Time) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM review_events
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		userID, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to count review events: %v", err)
	}
	return count, nil
}
