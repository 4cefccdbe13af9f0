package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review log validation errors.
var (
	// ErrReviewIDEmpty is returned when a review log ID is empty or nil.
	ErrReviewIDEmpty = errors.New("review log ID cannot be empty")

	// ErrReviewCardIDEmpty is returned when a review log's card ID is empty.
	ErrReviewCardIDEmpty = errors.New("review log card ID cannot be empty")

	// ErrReviewDeckIDEmpty is returned when a review log's deck ID is empty.
	ErrReviewDeckIDEmpty = errors.New("review log deck ID cannot be empty")

	// ErrNegativeResponseTime is returned when a response time is negative.
	ErrNegativeResponseTime = errors.New("response time cannot be negative")
)

// ReviewLog is an immutable audit record of a single review. It captures
// the scheduling state both before and after the review so history can be
// replayed or analyzed without re-running the scheduler. Logs are never
// updated; they are only deleted through card or deck cascades.
type ReviewLog struct {
	ID             uuid.UUID       `json:"id"`
	CardID         uuid.UUID       `json:"card_id"`
	DeckID         uuid.UUID       `json:"deck_id"`
	Rating         Rating          `json:"rating"`
	ResponseTimeMs int64           `json:"response_time_ms"`
	PreviousState  SchedulingState `json:"previous_state"`
	NewState       SchedulingState `json:"new_state"`
	ReviewedAt     time.Time       `json:"reviewed_at"`
}

// NewReviewLog creates a review log for a card transition, stamping it with
// the review instant. Returns an error if validation fails.
func NewReviewLog(
	cardID, deckID uuid.UUID,
	rating Rating,
	responseTimeMs int64,
	previous, next SchedulingState,
	reviewedAt time.Time,
) (*ReviewLog, error) {
	log := &ReviewLog{
		ID:             uuid.New(),
		CardID:         cardID,
		DeckID:         deckID,
		Rating:         rating,
		ResponseTimeMs: responseTimeMs,
		PreviousState:  previous,
		NewState:       next,
		ReviewedAt:     reviewedAt,
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}

	return log, nil
}

// Validate checks if the ReviewLog has valid data.
// Returns an error if any field fails validation.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil {
		return ErrReviewIDEmpty
	}

	if l.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}

	if l.DeckID == uuid.Nil {
		return ErrReviewDeckIDEmpty
	}

	if !l.Rating.IsValid() {
		return ErrInvalidRating
	}

	if l.ResponseTimeMs < 0 {
		return ErrNegativeResponseTime
	}

	return nil
}
