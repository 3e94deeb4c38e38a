// Package review implements the inbound review workflow: submitting a
// review, starting a curated session, resetting leeches and projecting
// streaks. It owns the read-modify-write cycle around the pure scheduling
// functions and the per-item serialization the scheduler itself does not
// provide.
package review

import (
	"context"
	"sync"
	"time"

	"github.com/example/lexibot/internal/spaced_repetition"
	"github.com/example/lexibot/pkg/models"
)

// Points credited per review outcome. Attempting a difficult item still
// earns a little, so failed reviews are not free of reward.
const (
	PointsPerSuccess = 10
	PointsPerFailure = 2
)

// ItemStore is the durable storage the service needs for review items
type ItemStore interface {
	spaced_repetition.ItemSource
	GetByID(ctx context.Context, id int64) (*models.ReviewableItem, error)
	Save(ctx context.Context, item *models.ReviewableItem) error
	OwnerOf(ctx context.Context, item *models.ReviewableItem) (int64, error)
	LeechesForUser(ctx context.Context, userID int64) ([]models.ReviewableItem, error)
}

// EventSink receives review events for analytics; it is never read back
type EventSink interface {
	Create(ctx context.Context, event *models.ReviewEvent) error
}

// SessionRecorder records curated sessions for analytics
type SessionRecorder interface {
	Create(ctx context.Context, session *models.PracticeSession) error
}

// StreakStore persists per-user streak state
type StreakStore interface {
	GetByUser(ctx context.Context, userID int64) (*models.StreakState, error)
	Save(ctx context.Context, state *models.StreakState) error
}

// PointsLedger credits gamification points to users
type PointsLedger interface {
	AddPoints(ctx context.Context, userID int64, points int) error
}

// Result is the outcome of a submitted review handed back to the caller
type Result struct {
	NextReviewAt time.Time `json:"next_review_at"`
	IsLeech      bool      `json:"is_leech"`
	Lapses       int       `json:"lapses"`
	TotalReviews int       `json:"total_reviews"`
}

// Service wires the scheduling engine to storage
type Service struct {
	items    ItemStore
	events   EventSink
	sessions SessionRecorder
	streaks  StreakStore
	ledger   PointsLedger
	engine   *spaced_repetition.Engine
	curator  *spaced_repetition.Curator

	// Concurrent reviews of the same item must be serialized or the
	// second update would be computed from stale state
	mu        sync.Mutex
	itemLocks map[int64]*sync.Mutex
}

// NewService creates a review service over the given stores
func NewService(items ItemStore, events EventSink, sessions SessionRecorder, streaks StreakStore, ledger PointsLedger) *Service {
	return &Service{
		items:     items,
		events:    events,
		sessions:  sessions,
		streaks:   streaks,
		ledger:    ledger,
		engine:    spaced_repetition.NewEngine(),
		curator:   spaced_repetition.NewCurator(items),
		itemLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *Service) lockFor(itemID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.itemLocks[itemID]
	if !ok {
		lock = &sync.Mutex{}
		s.itemLocks[itemID] = lock
	}
	return lock
}

// SubmitReview applies one review to an item: runs the scheduling update,
// persists the new state, appends a review event and credits points.
// A missing item surfaces the store's not-found error; no item is ever
// fabricated.
func (s *Service) SubmitReview(ctx context.Context, itemID int64, quality int, responseTimeMS *int, now time.Time) (*Result, error) {
	lock := s.lockFor(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	userID, err := s.items.OwnerOf(ctx, item)
	if err != nil {
		return nil, err
	}

	updated := s.engine.Update(*item, quality, responseTimeMS, now)
	if err := s.items.Save(ctx, &updated); err != nil {
		return nil, err
	}

	event := &models.ReviewEvent{
		ItemID:         updated.ID,
		UserID:         userID,
		Quality:        quality,
		ResponseTimeMS: responseTimeMS,
		OccurredAt:     now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	points := PointsPerFailure
	if quality >= s.engine.PassThreshold {
		points = PointsPerSuccess
	}
	if err := s.ledger.AddPoints(ctx, userID, points); err != nil {
		return nil, err
	}

	return &Result{
		NextReviewAt: updated.NextReviewAt,
		IsLeech:      updated.IsLeech,
		Lapses:       updated.Lapses,
		TotalReviews: updated.TotalReviews,
	}, nil
}

// StartSession curates a bounded review queue for the scope and records
// the session for analytics. An empty queue is a valid result.
func (s *Service) StartSession(ctx context.Context, scope spaced_repetition.Scope, limit int, now time.Time) (*models.SessionQueue, error) {
	queue, err := s.curator.Curate(ctx, scope, now, limit)
	if err != nil {
		return nil, err
	}

	session := &models.PracticeSession{
		ID:          queue.SessionID,
		UserID:      scope.UserID,
		SessionType: "review",
		ItemCount:   len(queue.Items),
		StartedAt:   now,
	}
	if scope.DeckID != 0 {
		deckID := scope.DeckID
		session.DeckID = &deckID
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return queue, nil
}

// ResetLeech clears an item's leech flag on explicit learner request. It
// is deliberately not reachable from SubmitReview.
func (s *Service) ResetLeech(ctx context.Context, itemID int64) (*models.ReviewableItem, error) {
	lock := s.lockFor(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	reset := spaced_repetition.ResetLeech(*item)
	if err := s.items.Save(ctx, &reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// Leeches returns a user's leech-flagged items
func (s *Service) Leeches(ctx context.Context, userID int64) ([]models.ReviewableItem, error) {
	return s.items.LeechesForUser(ctx, userID)
}

// ProjectStreak advances a user's streak for the given day and persists
// the result. Safe to call after every review; same-day calls are no-ops.
func (s *Service) ProjectStreak(ctx context.Context, userID int64, today time.Time, hadActivity bool) (*models.StreakState, error) {
	state, err := s.streaks.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	projected := spaced_repetition.ProjectStreak(*state, today, hadActivity)
	if err := s.streaks.Save(ctx, &projected); err != nil {
		return nil, err
	}
	return &projected, nil
}
