// Package stats derives study statistics from cards, review logs and daily
// counter rows: retention, streaks, forecasts and per-deck summaries. All
// functions are pure; callers pass the current instant explicitly.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
)

// matureIntervalDays is the interval at which a card counts as mature.
const matureIntervalDays = 21

// DeckSummary aggregates everything a deck overview screen needs.
type DeckSummary struct {
	TotalCards        int     `json:"total_cards"`
	NewCards          int     `json:"new_cards"`
	LearningCards     int     `json:"learning_cards"`
	ReviewCards       int     `json:"review_cards"`
	SuspendedCards    int     `json:"suspended_cards"`
	DueToday          int     `json:"due_today"`
	DueTomorrow       int     `json:"due_tomorrow"`
	AverageEaseFactor float64 `json:"average_ease_factor"` // rounded to 2 decimals
	RetentionRate     int     `json:"retention_rate"`      // trailing 30 days, percent
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
}

// Aggregate sums daily counter rows over a period.
type Aggregate struct {
	TotalReviewed    int   `json:"total_reviewed"`
	TotalNewLearned  int   `json:"total_new_learned"`
	TotalCorrect     int   `json:"total_correct"`
	TotalIncorrect   int   `json:"total_incorrect"`
	TotalStudyTimeMs int64 `json:"total_study_time_ms"`
	AveragePerDay    int   `json:"average_per_day"`
	Days             int   `json:"days"` // days with at least one review
}

// RetentionRate returns the fraction of reviews in the trailing window rated
// Good or Easy, 0 when the window holds no reviews.
func RetentionRate(reviews []*domain.ReviewLog, periodDays int, now time.Time) float64 {
	cutoff := now.AddDate(0, 0, -periodDays)

	recent := lo.Filter(reviews, func(r *domain.ReviewLog, _ int) bool {
		return !r.ReviewedAt.Before(cutoff)
	})
	if len(recent) == 0 {
		return 0
	}

	correct := lo.CountBy(recent, func(r *domain.ReviewLog) bool {
		return r.Rating.Correct()
	})

	return float64(correct) / float64(len(recent))
}

// Streaks computes the current and longest runs of consecutive UTC calendar
// days containing at least one review. The current streak is anchored to
// today or yesterday; with no review on either, it is 0.
func Streaks(reviews []*domain.ReviewLog, now time.Time) (current, longest int) {
	if len(reviews) == 0 {
		return 0, 0
	}

	days := lo.Uniq(lo.Map(reviews, func(r *domain.ReviewLog, _ int) string {
		return domain.DateKey(r.ReviewedAt)
	}))
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	today := domain.DateKey(now)
	yesterday := domain.DateKey(now.AddDate(0, 0, -1))

	if days[0] == today || days[0] == yesterday {
		current = 1
		start, _ := time.Parse(domain.DateLayout, days[0])
		for i := 1; i < len(days); i++ {
			if days[i] != start.AddDate(0, 0, -i).Format(domain.DateLayout) {
				break
			}
			current++
		}
	}

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		prev, _ := time.Parse(domain.DateLayout, days[i-1])
		curr, _ := time.Parse(domain.DateLayout, days[i])
		if prev.Sub(curr) == 24*time.Hour {
			run++
		} else {
			longest = max(longest, run)
			run = 1
		}
	}
	longest = max(longest, run)

	return current, longest
}

// Forecast buckets non-suspended cards by the UTC calendar day their due
// instant falls on, over the next daysAhead days starting today. Days with
// nothing due are explicit zero entries; cards due outside the window are
// not counted.
func Forecast(cards []*domain.Flashcard, daysAhead int, now time.Time) map[string]int {
	forecast := make(map[string]int, daysAhead)
	for i := 0; i < daysAhead; i++ {
		forecast[domain.DateKey(now.AddDate(0, 0, i))] = 0
	}

	for _, card := range cards {
		if card.IsSuspended() {
			continue
		}
		day := domain.DateKey(card.State.DueAt)
		if _, ok := forecast[day]; ok {
			forecast[day]++
		}
	}

	return forecast
}

// CalculateDeckStats builds the full summary for one deck's cards and
// review history.
func CalculateDeckStats(cards []*domain.Flashcard, reviews []*domain.ReviewLog, now time.Time) DeckSummary {
	countStatus := func(status domain.CardStatus) int {
		return lo.CountBy(cards, func(c *domain.Flashcard) bool {
			return c.Status == status
		})
	}

	dueToday := lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return !c.IsSuspended() && srs.IsDue(c.State, now)
	})

	tomorrow := now.Add(24 * time.Hour)
	dueTomorrow := lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return !c.IsSuspended() && c.State.DueAt.After(now) && !c.State.DueAt.After(tomorrow)
	})

	reviewedCards := lo.Filter(cards, func(c *domain.Flashcard, _ int) bool {
		return !c.State.LastReviewedAt.IsZero()
	})
	averageEase := domain.DefaultEaseFactor
	if len(reviewedCards) > 0 {
		total := lo.SumBy(reviewedCards, func(c *domain.Flashcard) float64 {
			return c.State.EaseFactor
		})
		averageEase = total / float64(len(reviewedCards))
	}

	current, longest := Streaks(reviews, now)

	return DeckSummary{
		TotalCards:        len(cards),
		NewCards:          countStatus(domain.CardStatusNew),
		LearningCards:     countStatus(domain.CardStatusLearning),
		ReviewCards:       countStatus(domain.CardStatusReview),
		SuspendedCards:    countStatus(domain.CardStatusSuspended),
		DueToday:          dueToday,
		DueTomorrow:       dueTomorrow,
		AverageEaseFactor: math.Round(averageEase*100) / 100,
		RetentionRate:     int(math.Round(RetentionRate(reviews, 30, now) * 100)),
		CurrentStreak:     current,
		LongestStreak:     longest,
	}
}

// AggregateDailyStats sums counter rows; the per-day average divides by the
// number of days that actually had reviews, not the row count.
func AggregateDailyStats(rows []*domain.DailyStats) Aggregate {
	agg := Aggregate{}
	for _, row := range rows {
		agg.TotalReviewed += row.Reviewed
		agg.TotalNewLearned += row.NewLearned
		agg.TotalCorrect += row.Correct
		agg.TotalIncorrect += row.Incorrect
		agg.TotalStudyTimeMs += row.StudyTimeMs
		if row.Reviewed > 0 {
			agg.Days++
		}
	}

	if agg.Days > 0 {
		agg.AveragePerDay = int(math.Round(float64(agg.TotalReviewed) / float64(agg.Days)))
	}

	return agg
}

// MatureCount counts cards whose interval has reached the mature threshold.
func MatureCount(cards []*domain.Flashcard) int {
	return lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return c.State.Interval >= matureIntervalDays
	})
}

// YoungCount counts reviewed cards still below the mature threshold.
func YoungCount(cards []*domain.Flashcard) int {
	return lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return c.State.Interval > 0 && c.State.Interval < matureIntervalDays
	})
}

// DateRange expands an inclusive [start, end] pair of YYYY-MM-DD keys into
// the list of days between them. Returns an error on malformed bounds or a
// start after the end.
func DateRange(start, end string) ([]string, error) {
	startDay, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endDay, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if startDay.After(endDay) {
		return nil, fmt.Errorf("start date %s is after end date %s", start, end)
	}

	var days []string
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}

	return days, nil
}

// FormatStudyTime renders accumulated study time as a compact duration,
// "1h 23m" / "4m 5s" / "42s" style.
func FormatStudyTime(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
