package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// StreakRepository handles database operations for streak state
type StreakRepository struct{}

// NewStreakRepository creates a new repository instance
func NewStreakRepository() *StreakRepository {
	return &StreakRepository{}
}

// GetByUser returns a user's streak state, or a zero-value state when the
// user has never been active
func (r *StreakRepository) GetByUser(ctx context.Context, userID int64) (*models.StreakState, error) {
	var state models.StreakState
	err := DB.GetContext(ctx, &state, "SELECT * FROM streaks WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.StreakState{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak state: %v", err)
	}
	return &state, nil
}

// Save upserts a user's streak state
func (r *StreakRepository) Save(ctx context.Context, state *models.StreakState) error {
	if DB.DriverName() == "postgres" {
		_, err := DB.ExecContext(ctx, `
			INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date, freezes_available)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id) DO UPDATE SET
				current_streak = EXCLUDED.current_streak,
				longest_streak = EXCLUDED.longest_streak,
				last_activity_date = EXCLUDED.last_activity_date,
				freezes_available = EXCLUDED.freezes_available`,
			state.UserID, state.CurrentStreak, state.LongestStreak, state.LastActivityDate, state.FreezesAvailable)
		if err != nil {
			return fmt.Errorf("failed to save streak state: %v", err)
		}
		return nil
	}

	_, err := DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO streaks (user_id, current_streak, longest_streak, last_activity_date, freezes_available)
		VALUES ($1, $2, $3, $4, $5)`,
		state.UserID, state.CurrentStreak, state.LongestStreak, state.LastActivityDate, state.FreezesAvailable)
	if err != nil {
		return fmt.Errorf("failed to save streak state: %v", err)
	}
	return nil
}

// AddFreeze grants a user an additional streak freeze
func (r *StreakRepository) AddFreeze(ctx context.Context, userID int64) error {
	state, err := r.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	state.FreezesAvailable++
	return r.Save(ctx, state)
}
