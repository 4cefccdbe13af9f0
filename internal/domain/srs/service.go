package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/hakusan/kioku/internal/domain"
)

// Common errors
var (
	ErrInvalidRating = errors.New("invalid review rating")
)

// Service defines the interface for scheduling operations. It exists so
// callers can inject alternative parameter sets (or a fake) while the
// algorithm itself stays a set of pure functions.
type Service interface {
	// CalculateNextState computes the scheduling state after reviewing a
	// card with the given rating at now.
	CalculateNextState(
		state domain.SchedulingState,
		rating domain.Rating,
		now time.Time,
	) (domain.SchedulingState, error)

	// PreviewIntervals applies the scheduler non-destructively for each of
	// the four ratings and returns the resulting intervals in days, so the
	// UI can show "if you press X, next review in Y days".
	PreviewIntervals(state domain.SchedulingState, now time.Time) map[domain.Rating]int
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: DefaultParams()}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// CalculateNextState implements the Service interface.
func (s *defaultService) CalculateNextState(
	state domain.SchedulingState,
	rating domain.Rating,
	now time.Time,
) (domain.SchedulingState, error) {
	if !rating.IsValid() {
		return domain.SchedulingState{}, ErrInvalidRating
	}

	return calculateNextState(state, rating, now, s.params), nil
}

// PreviewIntervals implements the Service interface.
func (s *defaultService) PreviewIntervals(
	state domain.SchedulingState,
	now time.Time,
) map[domain.Rating]int {
	intervals := make(map[domain.Rating]int, 4)
	for _, rating := range []domain.Rating{
		domain.RatingAgain,
		domain.RatingHard,
		domain.RatingGood,
		domain.RatingEasy,
	} {
		intervals[rating] = calculateNextState(state, rating, now, s.params).Interval
	}
	return intervals
}

// FormatInterval renders an interval in days for display: days below a
// week, then weeks, months, and years.
func FormatInterval(days int) string {
	switch {
	case days < 1:
		return "< 1 day"
	case days == 1:
		return "1 day"
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		weeks := int(float64(days)/7 + 0.5)
		if weeks == 1 {
			return "1 week"
		}
		return fmt.Sprintf("%d weeks", weeks)
	case days < 365:
		months := int(float64(days)/30 + 0.5)
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	default:
		return fmt.Sprintf("%.1f years", float64(days)/365)
	}
}
