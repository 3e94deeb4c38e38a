package spaced_repetition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/lexibot/pkg/models"
)

// ErrInvalidLimit is returned when a session is requested with a
// non-positive size
var ErrInvalidLimit = errors.New("session limit must be positive")

// Scope selects the candidate pool for a session: a single deck, or every
// deck owned by the user when DeckID is zero
type Scope struct {
	UserID int64
	DeckID int64
}

// ItemSource is the narrow read interface the curator needs from storage
type ItemSource interface {
	// QueryDue returns items in scope with next_review_at <= before,
	// capped at limit
	QueryDue(ctx context.Context, scope Scope, before time.Time, limit int) ([]models.ReviewableItem, error)
	// QueryWeakest returns non-due items in scope excluding the given ids,
	// capped at limit
	QueryWeakest(ctx context.Context, scope Scope, excluding []int64, limit int) ([]models.ReviewableItem, error)
}

// Curator assembles bounded, prioritized review queues
type Curator struct {
	source ItemSource
}

// NewCurator creates a curator reading candidates from the given source
func NewCurator(source ItemSource) *Curator {
	return &Curator{source: source}
}

// Curate builds a session queue of at most limit items: due items first,
// most overdue leading, then a fill of non-due items ordered weakest
// first. Zero candidates is not an error; the caller gets an empty queue.
// The returned order is the canonical priority order; presentation-side
// shuffling is the consumer's business.
func (c *Curator) Curate(ctx context.Context, scope Scope, now time.Time, limit int) (*models.SessionQueue, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	due, err := c.source.QueryDue(ctx, scope, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due items: %v", err)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	seen := make(map[int64]bool, len(due))
	queue := make([]models.ReviewableItem, 0, limit)
	for _, item := range due {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		queue = append(queue, item)
	}

	// An empty or short due set must never starve a session: top up with
	// the weakest known items so difficult material keeps surfacing even
	// when it is not strictly due
	if len(queue) < limit {
		excluding := make([]int64, 0, len(queue))
		for _, item := range queue {
			excluding = append(excluding, item.ID)
		}
		weak, err := c.source.QueryWeakest(ctx, scope, excluding, limit-len(queue))
		if err != nil {
			return nil, fmt.Errorf("failed to query fallback items: %v", err)
		}
		sort.SliceStable(weak, func(i, j int) bool {
			if weak[i].EasinessFactor != weak[j].EasinessFactor {
				return weak[i].EasinessFactor < weak[j].EasinessFactor
			}
			return weak[i].NextReviewAt.Before(weak[j].NextReviewAt)
		})
		for _, item := range weak {
			if len(queue) >= limit {
				break
			}
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			queue = append(queue, item)
		}
	}

	return &models.SessionQueue{
		SessionID: uuid.NewString(),
		Items:     queue,
	}, nil
}
