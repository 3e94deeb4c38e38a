package database

import (
	"context"
	"fmt"
	"time"
)

// UserStatistics summarizes a user's learning progress
type UserStatistics struct {
	TotalItems        int     `db:"total_items"`
	DueToday          int     `db:"due_today"`
	Mastered          int     `db:"mastered"`
	Leeches           int     `db:"leeches"`
	AvgEasinessFactor float64 `db:"avg_ef"`
}

// StatisticsRepository aggregates progress numbers for display
type StatisticsRepository struct{}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{}
}

// ForUser returns aggregate statistics for a user's review items
func (r *StatisticsRepository) ForUser(ctx context.Context, userID int64, now time.Time) (*UserStatistics, error) {
	stats := &UserStatistics{}

	err := DB.GetContext(ctx, &stats.TotalItems, `
		SELECT COUNT(*) FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %v", err)
	}

	err = DB.GetContext(ctx, &stats.DueToday, `
		SELECT COUNT(*) FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1 AND ri.next_review_at <= $2`, userID, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count due items: %v", err)
	}

	// Mastered: reviewed at least 5 times with a month-scale interval
	err = DB.GetContext(ctx, &stats.Mastered, `
		SELECT COUNT(*) FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1 AND ri.repetitions >= 5 AND ri.interval_days >= 30`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count mastered items: %v", err)
	}

	err = DB.GetContext(ctx, &stats.Leeches, `
		SELECT COUNT(*) FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1 AND ri.is_leech = true`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leeches: %v", err)
	}

	err = DB.GetContext(ctx, &stats.AvgEasinessFactor, `
		SELECT COALESCE(AVG(ri.easiness_factor), 2.5) FROM review_items ri
		JOIN decks d ON ri.deck_id = d.id
		WHERE d.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average easiness factor: %v", err)
	}

	return stats, nil
}
