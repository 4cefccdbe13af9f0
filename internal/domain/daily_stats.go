package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Daily stats validation errors.
var (
	// ErrStatsDateEmpty is returned when a daily stats date is empty.
	ErrStatsDateEmpty = errors.New("daily stats date cannot be empty")

	// ErrStatsDeckIDEmpty is returned when a daily stats deck ID is empty.
	ErrStatsDeckIDEmpty = errors.New("daily stats deck ID cannot be empty")
)

// DateLayout is the calendar-day key format used for daily statistics
// bucketing, always in UTC.
const DateLayout = "2006-01-02"

// DateKey formats an instant as the UTC calendar-day key.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DailyStats accumulates per-deck review counters for one UTC calendar day.
// Rows are keyed by (Date, DeckID) and upserted once per review event; they
// are never deleted independently of their deck.
type DailyStats struct {
	Date        string    `json:"date"` // YYYY-MM-DD, UTC
	DeckID      uuid.UUID `json:"deck_id"`
	Reviewed    int       `json:"reviewed"`
	NewLearned  int       `json:"new_learned"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	StudyTimeMs int64     `json:"study_time_ms"`
}

// NewDailyStats creates an empty counter row for a deck and day.
func NewDailyStats(date string, deckID uuid.UUID) (*DailyStats, error) {
	stats := &DailyStats{
		Date:   date,
		DeckID: deckID,
	}

	if err := stats.Validate(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Validate checks if the DailyStats has valid data.
func (s *DailyStats) Validate() error {
	if s.Date == "" {
		return ErrStatsDateEmpty
	}

	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return ErrStatsDateEmpty
	}

	if s.DeckID == uuid.Nil {
		return ErrStatsDeckIDEmpty
	}

	return nil
}

// WithReview returns a copy of the stats with one review applied:
// reviewed always increments, newLearned only when the card was new before
// the review, correct for Good or better, incorrect for Again, and the
// response time accumulates into study time.
func (s *DailyStats) WithReview(rating Rating, responseTimeMs int64, wasNew bool) *DailyStats {
	updated := *s
	updated.Reviewed++
	if wasNew {
		updated.NewLearned++
	}
	if rating.Correct() {
		updated.Correct++
	}
	if rating == RatingAgain {
		updated.Incorrect++
	}
	updated.StudyTimeMs += responseTimeMs
	return &updated
}
