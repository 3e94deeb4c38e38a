package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByTelegramID returns a user by their Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, `
		SELECT telegram_id, username, first_name, last_name, points,
		       notification_enabled, notification_hour, items_per_session,
		       created_at, updated_at
		FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetOrCreate returns an existing user or registers a new one
func (r *UserRepository) GetOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetByTelegramID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err = DB.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return r.GetByTelegramID(ctx, user.ID)
}

// AddPoints credits points to a user's lifetime total
func (r *UserRepository) AddPoints(ctx context.Context, telegramID int64, points int) error {
	_, err := DB.ExecContext(ctx,
		"UPDATE users SET points = points + $1, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = $2",
		points, telegramID)
	if err != nil {
		return fmt.Errorf("failed to add points: %v", err)
	}
	return nil
}

// GetUsersForNotification returns users who want reminders at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := DB.SelectContext(ctx, &users, `
		SELECT telegram_id, username, first_name, last_name, points,
		       notification_enabled, notification_hour, items_per_session,
		       created_at, updated_at
		FROM users
		WHERE notification_enabled = true AND notification_hour = $1`, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}

// TopByPoints returns the highest scoring users for the leaderboard
func (r *UserRepository) TopByPoints(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := DB.SelectContext(ctx, &users, `
		SELECT telegram_id, username, first_name, last_name, points,
		       notification_enabled, notification_hour, items_per_session,
		       created_at, updated_at
		FROM users ORDER BY points DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %v", err)
	}
	return users, nil
}
