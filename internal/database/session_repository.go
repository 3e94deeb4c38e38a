package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// SessionRepository records curated practice sessions for analytics
type SessionRepository struct{}

// NewSessionRepository creates a new repository instance
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Create records a curated session
func (r *SessionRepository) Create(ctx context.Context, session *models.PracticeSession) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO practice_sessions (id, user_id, deck_id, session_type, item_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.UserID, session.DeckID, session.SessionType, session.ItemCount, session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create practice session: %v", err)
	}
	return nil
}

// CountForUserSince returns how many sessions a user started after the
// given time; used by weekly goal reporting
func (r *SessionRepository) CountForUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM practice_sessions WHERE user_id = $1 AND started_at >= $2",
		userID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count practice sessions: %v", err)
	}
	return count, nil
}
