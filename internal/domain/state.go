package domain

import (
	"errors"
	"time"
)

// Scheduling state validation errors.
var (
	// ErrEaseFactorTooLow is returned when an ease factor drops below the
	// SM-2 floor of 1.3.
	ErrEaseFactorTooLow = errors.New("ease factor must be at least 1.3")

	// ErrNegativeInterval is returned when an interval is negative.
	ErrNegativeInterval = errors.New("interval must be greater than or equal to 0")

	// ErrNegativeRepetitions is returned when a repetition count is negative.
	ErrNegativeRepetitions = errors.New("repetitions must be greater than or equal to 0")
)

// MinEaseFactor is the SM-2 lower bound for the ease factor.
const MinEaseFactor = 1.3

// DefaultEaseFactor is the ease factor assigned to cards that have never
// been reviewed.
const DefaultEaseFactor = 2.5

// SchedulingState holds the SM-2 scheduling variables for a single card.
// It is owned by exactly one Flashcard and is only ever replaced wholesale
// by the scheduling engine; callers must not mutate it in place.
type SchedulingState struct {
	EaseFactor     float64   `json:"ease_factor"`      // difficulty multiplier, floor 1.3
	Interval       int       `json:"interval"`         // days until next review
	Repetitions    int       `json:"repetitions"`      // consecutive successful reviews
	DueAt          time.Time `json:"due_at"`           // when the card is next due
	LastReviewedAt time.Time `json:"last_reviewed_at"` // zero time if never reviewed
}

// NewSchedulingState returns the initial state for a card created at now:
// default ease factor, no repetitions, due immediately.
func NewSchedulingState(now time.Time) SchedulingState {
	return SchedulingState{
		EaseFactor:     DefaultEaseFactor,
		Interval:       0,
		Repetitions:    0,
		DueAt:          now,
		LastReviewedAt: time.Time{},
	}
}

// Validate checks the SM-2 invariants: ease factor at or above the floor,
// non-negative interval and repetition count.
func (s SchedulingState) Validate() error {
	if s.EaseFactor < MinEaseFactor {
		return ErrEaseFactorTooLow
	}
	if s.Interval < 0 {
		return ErrNegativeInterval
	}
	if s.Repetitions < 0 {
		return ErrNegativeRepetitions
	}
	return nil
}
