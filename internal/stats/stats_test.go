package stats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/stats"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func reviewAt(rating domain.Rating, reviewedAt time.Time) *domain.ReviewLog {
	return &domain.ReviewLog{
		ID:         uuid.New(),
		CardID:     uuid.New(),
		DeckID:     uuid.New(),
		Rating:     rating,
		ReviewedAt: reviewedAt,
	}
}

func cardWith(status domain.CardStatus, state domain.SchedulingState) *domain.Flashcard {
	return &domain.Flashcard{
		ID:     uuid.New(),
		DeckID: uuid.New(),
		Front:  "front",
		Back:   "back",
		State:  state,
		Status: status,
	}
}

func TestRetentionRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reviews []*domain.ReviewLog
		want    float64
	}{
		{
			name:    "no reviews",
			reviews: nil,
			want:    0,
		},
		{
			name: "all correct",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, testNow.AddDate(0, 0, -1)),
				reviewAt(domain.RatingEasy, testNow.AddDate(0, 0, -2)),
			},
			want: 1,
		},
		{
			name: "hard and again count as misses",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, testNow.AddDate(0, 0, -1)),
				reviewAt(domain.RatingAgain, testNow.AddDate(0, 0, -1)),
				reviewAt(domain.RatingHard, testNow.AddDate(0, 0, -2)),
				reviewAt(domain.RatingEasy, testNow.AddDate(0, 0, -3)),
			},
			want: 0.5,
		},
		{
			name: "reviews outside the window are ignored",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingAgain, testNow.AddDate(0, 0, -45)),
				reviewAt(domain.RatingGood, testNow.AddDate(0, 0, -5)),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, stats.RetentionRate(tt.reviews, 30, testNow), 1e-9)
		})
	}
}

func TestStreaks(t *testing.T) {
	t.Parallel()

	day := func(daysAgo int) time.Time {
		return testNow.AddDate(0, 0, -daysAgo)
	}

	tests := []struct {
		name        string
		reviews     []*domain.ReviewLog
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "no reviews",
			reviews:     nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name: "three consecutive days plus an isolated day",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, day(0)),
				reviewAt(domain.RatingGood, day(1)),
				reviewAt(domain.RatingGood, day(2)),
				reviewAt(domain.RatingGood, day(5)),
			},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name: "streak anchored to yesterday still counts",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, day(1)),
				reviewAt(domain.RatingGood, day(2)),
			},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "gap since yesterday breaks the current streak",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, day(3)),
				reviewAt(domain.RatingGood, day(4)),
				reviewAt(domain.RatingGood, day(5)),
				reviewAt(domain.RatingGood, day(6)),
			},
			wantCurrent: 0,
			wantLongest: 4,
		},
		{
			name: "multiple reviews in one day count once",
			reviews: []*domain.ReviewLog{
				reviewAt(domain.RatingGood, day(0)),
				reviewAt(domain.RatingAgain, day(0).Add(2*time.Hour)),
				reviewAt(domain.RatingGood, day(1)),
			},
			wantCurrent: 2,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			current, longest := stats.Streaks(tt.reviews, testNow)
			assert.Equal(t, tt.wantCurrent, current, "current streak")
			assert.Equal(t, tt.wantLongest, longest, "longest streak")
		})
	}
}

func TestForecast(t *testing.T) {
	t.Parallel()

	dueIn := func(days int) domain.SchedulingState {
		return domain.SchedulingState{
			EaseFactor:     2.5,
			Interval:       days,
			Repetitions:    1,
			DueAt:          testNow.AddDate(0, 0, days),
			LastReviewedAt: testNow,
		}
	}

	cards := []*domain.Flashcard{
		cardWith(domain.CardStatusReview, dueIn(0)),
		cardWith(domain.CardStatusReview, dueIn(1)),
		cardWith(domain.CardStatusReview, dueIn(1)),
		cardWith(domain.CardStatusSuspended, dueIn(1)),
		cardWith(domain.CardStatusReview, dueIn(10)), // outside window
	}

	forecast := stats.Forecast(cards, 7, testNow)
	require.Len(t, forecast, 7)

	assert.Equal(t, 1, forecast[domain.DateKey(testNow)])
	assert.Equal(t, 2, forecast[domain.DateKey(testNow.AddDate(0, 0, 1))],
		"suspended cards are excluded")
	assert.Equal(t, 0, forecast[domain.DateKey(testNow.AddDate(0, 0, 2))],
		"empty days are explicit zero buckets")

	_, beyond := forecast[domain.DateKey(testNow.AddDate(0, 0, 10))]
	assert.False(t, beyond)
}

func TestCalculateDeckStats(t *testing.T) {
	t.Parallel()

	reviewedState := func(ease float64, dueAt time.Time) domain.SchedulingState {
		return domain.SchedulingState{
			EaseFactor:     ease,
			Interval:       3,
			Repetitions:    2,
			DueAt:          dueAt,
			LastReviewedAt: testNow.AddDate(0, 0, -3),
		}
	}

	cards := []*domain.Flashcard{
		cardWith(domain.CardStatusNew, domain.NewSchedulingState(testNow)),
		cardWith(domain.CardStatusLearning, reviewedState(2.5, testNow.AddDate(0, 0, -1))),
		cardWith(domain.CardStatusReview, reviewedState(2.2, testNow.Add(12*time.Hour))),
		cardWith(domain.CardStatusSuspended, reviewedState(1.3, testNow.AddDate(0, 0, -2))),
	}

	reviews := []*domain.ReviewLog{
		reviewAt(domain.RatingGood, testNow.AddDate(0, 0, -1)),
		reviewAt(domain.RatingAgain, testNow),
	}

	summary := stats.CalculateDeckStats(cards, reviews, testNow)

	assert.Equal(t, 4, summary.TotalCards)
	assert.Equal(t, 1, summary.NewCards)
	assert.Equal(t, 1, summary.LearningCards)
	assert.Equal(t, 1, summary.ReviewCards)
	assert.Equal(t, 1, summary.SuspendedCards)

	// The new card and the overdue learning card are due now; the suspended
	// one never counts.
	assert.Equal(t, 2, summary.DueToday)
	assert.Equal(t, 1, summary.DueTomorrow)

	// Mean over the three reviewed cards: (2.5 + 2.2 + 1.3) / 3 = 2.0.
	assert.InDelta(t, 2.0, summary.AverageEaseFactor, 1e-9)

	assert.Equal(t, 50, summary.RetentionRate)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
}

func TestCalculateDeckStats_NoReviewedCards(t *testing.T) {
	t.Parallel()

	cards := []*domain.Flashcard{
		cardWith(domain.CardStatusNew, domain.NewSchedulingState(testNow)),
	}

	summary := stats.CalculateDeckStats(cards, nil, testNow)
	assert.InDelta(t, 2.5, summary.AverageEaseFactor, 1e-9,
		"ease factor defaults when nothing has been reviewed")
	assert.Equal(t, 0, summary.RetentionRate)
	assert.Equal(t, 0, summary.CurrentStreak)
}

func TestAggregateDailyStats(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()
	rows := []*domain.DailyStats{
		{Date: "2024-03-10", DeckID: deckID, Reviewed: 10, NewLearned: 3, Correct: 8, Incorrect: 2, StudyTimeMs: 60000},
		{Date: "2024-03-11", DeckID: deckID, Reviewed: 0},
		{Date: "2024-03-12", DeckID: deckID, Reviewed: 20, NewLearned: 1, Correct: 15, Incorrect: 5, StudyTimeMs: 120000},
	}

	agg := stats.AggregateDailyStats(rows)
	assert.Equal(t, 30, agg.TotalReviewed)
	assert.Equal(t, 4, agg.TotalNewLearned)
	assert.Equal(t, 23, agg.TotalCorrect)
	assert.Equal(t, 7, agg.TotalIncorrect)
	assert.Equal(t, int64(180000), agg.TotalStudyTimeMs)
	assert.Equal(t, 2, agg.Days, "zero-review days do not count")
	assert.Equal(t, 15, agg.AveragePerDay)

	empty := stats.AggregateDailyStats(nil)
	assert.Equal(t, 0, empty.AveragePerDay)
	assert.Equal(t, 0, empty.Days)
}

func TestMatureAndYoungCounts(t *testing.T) {
	t.Parallel()

	withInterval := func(interval int) *domain.Flashcard {
		return cardWith(domain.CardStatusReview, domain.SchedulingState{
			EaseFactor:  2.5,
			Interval:    interval,
			Repetitions: 3,
			DueAt:       testNow,
		})
	}

	cards := []*domain.Flashcard{
		withInterval(0),
		withInterval(5),
		withInterval(20),
		withInterval(21),
		withInterval(100),
	}

	assert.Equal(t, 2, stats.MatureCount(cards))
	assert.Equal(t, 2, stats.YoungCount(cards))
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	days, err := stats.DateRange("2024-03-30", "2024-04-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-30", "2024-03-31", "2024-04-01", "2024-04-02"}, days)

	single, err := stats.DateRange("2024-03-15", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-15"}, single)

	_, err = stats.DateRange("2024-03-16", "2024-03-15")
	assert.Error(t, err)

	_, err = stats.DateRange("not-a-date", "2024-03-15")
	assert.Error(t, err)
}

func TestFormatStudyTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{42_000, "42s"},
		{65_000, "1m 5s"},
		{60 * 60 * 1000, "1h 0m"},
		{83 * 60 * 1000, "1h 23m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stats.FormatStudyTime(tt.ms))
	}
}
