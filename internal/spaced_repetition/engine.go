package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// QualityResponse represents the quality of recall in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Engine implements the SM-2 variant used to schedule reviews
type Engine struct {
	// Answers at or above this quality count as successful
	PassThreshold int
	// Lapse count at which an item is flagged as a leech
	LeechThreshold int
	// Answers faster than this qualify for the interval bonus
	FastAnswerMS int
	// Interval multiplier for fast correct answers
	FastAnswerBonus float64
	// Lower bound for the easiness factor
	MinEasiness float64
}

// NewEngine creates an engine with the default scheduling parameters
func NewEngine() *Engine {
	return &Engine{
		PassThreshold:   3,
		LeechThreshold:  DefaultLeechThreshold,
		FastAnswerMS:    3000,
		FastAnswerBonus: 1.1,
		MinEasiness:     1.3,
	}
}

// Update applies one review to an item and returns the new review state.
// quality is clamped to [0, 5]. responseTimeMS may be nil when the caller
// did not measure it. The function performs no I/O and is deterministic
// given (item, quality, responseTimeMS, now).
func (e *Engine) Update(item models.ReviewableItem, quality int, responseTimeMS *int, now time.Time) models.ReviewableItem {
	if quality < 0 {
		quality = 0
	}
	if quality > 5 {
		quality = 5
	}

	if quality < e.PassThreshold {
		// Failed recall: count the lapse and restart the interval ladder
		item.Lapses++
		item.Repetitions = 0
		item.IntervalDays = 1
		item.IsLeech = item.IsLeech || IsLeech(item.Lapses, e.LeechThreshold)
		if item.Familiarity > 0 {
			item.Familiarity--
		}
	} else {
		item.Repetitions++
		switch item.Repetitions {
		case 1:
			item.IntervalDays = 1
		case 2:
			item.IntervalDays = 6
		default:
			// Prior interval times prior EF; the EF update below must not
			// feed into this review's interval
			prev := item.IntervalDays
			if prev < 1 {
				prev = 1
			}
			item.IntervalDays = int(math.Round(float64(prev) * item.EasinessFactor))
		}
		// Fast correct answers earn a 10% longer interval
		if quality >= int(QualityCorrectHesitation) && responseTimeMS != nil && *responseTimeMS < e.FastAnswerMS {
			item.IntervalDays = int(float64(item.IntervalDays) * e.FastAnswerBonus)
		}
		if item.Familiarity < 5 {
			item.Familiarity++
		}
	}

	// EF moves on every review, success or failure
	ef := item.EasinessFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if ef < e.MinEasiness {
		ef = e.MinEasiness
	}
	item.EasinessFactor = ef

	item.TotalReviews++
	reviewed := now
	item.LastReviewedAt = &reviewed
	item.NextReviewAt = now.AddDate(0, 0, item.IntervalDays)

	return item
}
