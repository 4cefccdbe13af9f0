package srs

import (
	"math"
	"time"

	"github.com/hakusan/kioku/internal/domain"
)

// msPerDay mirrors the day length used for due-date arithmetic.
const msPerDay = 24 * time.Hour

// RatingToQuality maps the four-button rating onto the 0-5 SM-2 quality
// scale: Again=0, Hard=2, Good=3, Easy=5.
func RatingToQuality(rating domain.Rating) int {
	switch rating {
	case domain.RatingAgain:
		return 0
	case domain.RatingHard:
		return 2
	case domain.RatingGood:
		return 3
	case domain.RatingEasy:
		return 5
	default:
		return 0
	}
}

// nextEaseFactor applies the SM-2 ease formula
//
//	EF' = EF + 0.1 - (5-q)*(0.08 + (5-q)*0.02)
//
// clamped to the configured floor.
func nextEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(params.MinEaseFactor, newEF)
}

// calculateNextState computes the scheduling state after a review at now.
//
// Again resets repetitions and drops the interval to the lapse floor, with
// an extra ease penalty beyond the standard formula. Hard, Good and Easy
// all count as successful repetitions with progressively faster interval
// growth; the interval never falls below one day on a successful answer.
func calculateNextState(
	state domain.SchedulingState,
	rating domain.Rating,
	now time.Time,
	params *Params,
) domain.SchedulingState {
	quality := RatingToQuality(rating)
	newEF := nextEaseFactor(state.EaseFactor, quality, params)

	var newInterval, newRepetitions int

	switch rating {
	case domain.RatingAgain:
		// Lapse: reset progress completely.
		newRepetitions = 0
		newInterval = params.LapseInterval
		newEF = math.Max(params.MinEaseFactor, newEF-params.AgainPenalty)

	case domain.RatingHard:
		if state.Repetitions == 0 {
			newInterval = params.GraduatingInterval
		} else {
			newInterval = int(math.Round(float64(state.Interval) * params.HardMultiplier))
		}
		newRepetitions = state.Repetitions + 1

	case domain.RatingGood:
		switch state.Repetitions {
		case 0:
			newInterval = params.GraduatingInterval
		case 1:
			newInterval = params.SecondInterval
		default:
			newInterval = int(math.Round(float64(state.Interval) * newEF))
		}
		newRepetitions = state.Repetitions + 1

	default: // Easy
		if state.Repetitions == 0 {
			newInterval = params.EasyFirstInterval
		} else {
			newInterval = int(math.Round(float64(state.Interval) * newEF * params.EasyBonus))
		}
		newRepetitions = state.Repetitions + 1
	}

	// Successful answers always schedule at least one day out, even from
	// degenerate imported states with a zero interval.
	if newInterval < 1 {
		newInterval = 1
	}

	return domain.SchedulingState{
		EaseFactor:     newEF,
		Interval:       newInterval,
		Repetitions:    newRepetitions,
		DueAt:          now.Add(time.Duration(newInterval) * msPerDay),
		LastReviewedAt: now,
	}
}

// IsDue reports whether the card's scheduled review instant has passed.
// Due-ness is monotonic in now: once due, a card stays due until reviewed.
func IsDue(state domain.SchedulingState, now time.Time) bool {
	return !state.DueAt.After(now)
}

// IsNew reports whether the card has never been reviewed.
func IsNew(state domain.SchedulingState) bool {
	return state.Repetitions == 0 && state.LastReviewedAt.IsZero()
}

// DaysOverdue returns how many whole days past due the card is at now.
// Negative values mean the card is not yet due.
func DaysOverdue(state domain.SchedulingState, now time.Time) int {
	return int(math.Floor(now.Sub(state.DueAt).Hours() / 24))
}

// DetermineStatus derives the card status from its scheduling state:
// new if never reviewed, learning until the card has graduated (two
// successful repetitions and an interval of at least one day), review
// afterwards. Suspension is an external override and never derived here.
func DetermineStatus(state domain.SchedulingState) domain.CardStatus {
	if state.LastReviewedAt.IsZero() {
		return domain.CardStatusNew
	}

	if state.Repetitions < 2 || state.Interval < 1 {
		return domain.CardStatusLearning
	}

	return domain.CardStatusReview
}

// NewState returns the initial scheduling state for a card created at now.
func NewState(now time.Time) domain.SchedulingState {
	return domain.NewSchedulingState(now)
}
