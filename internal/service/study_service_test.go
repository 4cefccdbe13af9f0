package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
	"github.com/hakusan/kioku/internal/platform/sqlite"
	"github.com/hakusan/kioku/internal/service"
	"github.com/hakusan/kioku/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// testEnv bundles a service over a fresh in-memory database together with
// the raw stores, for asserting on persisted state directly.
type testEnv struct {
	svc     service.StudyService
	db      *sql.DB
	cards   store.CardStore
	reviews store.ReviewStore
	stats   store.StatsStore
	now     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(sqlite.InMemoryDSN, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := testNow
	env := &testEnv{
		db:      db,
		cards:   sqlite.NewCardStore(db, log),
		reviews: sqlite.NewReviewStore(db, log),
		stats:   sqlite.NewStatsStore(db, log),
		now:     &now,
	}

	env.svc, err = service.NewStudyService(
		db,
		sqlite.NewDeckStore(db, log),
		env.cards,
		env.reviews,
		env.stats,
		srs.NewDefaultService(),
		log,
		func() time.Time { return *env.now },
	)
	require.NoError(t, err)

	return env
}

func (e *testEnv) mustCreateDeck(t *testing.T, name string) *domain.Deck {
	t.Helper()
	deck, err := e.svc.CreateDeck(context.Background(), name, "", nil)
	require.NoError(t, err)
	return deck
}

func (e *testEnv) mustCreateCard(t *testing.T, deckID uuid.UUID, front string) *domain.Flashcard {
	t.Helper()
	card, err := e.svc.CreateCard(context.Background(), domain.CardPayload{
		DeckID: deckID,
		Front:  front,
		Back:   front + " meaning",
		State:  domain.NewSchedulingState(*e.now),
	})
	require.NoError(t, err)
	return card
}

func TestNewStudyService_NilDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewStudyService(nil, nil, nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStudyService_CreateDeck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck, err := env.svc.CreateDeck(ctx, "Vocabulary", "daily study", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDeckSettings(), deck.Settings)

	// Duplicate names surface the store sentinel.
	_, err = env.svc.CreateDeck(ctx, "vocabulary", "", nil)
	assert.ErrorIs(t, err, store.ErrDeckNameExists)

	custom := domain.DeckSettings{
		NewCardsPerDay:   5,
		ReviewsPerDay:    0,
		DefaultDirection: domain.DirectionRandom,
	}
	deck2, err := env.svc.CreateDeck(ctx, "Kanji", "", &custom)
	require.NoError(t, err)
	assert.Equal(t, custom, deck2.Settings)
}

func TestStudyService_UpdateDeck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Before")

	settings := deck.Settings
	settings.NewCardsPerDay = 7
	updated, err := env.svc.UpdateDeck(ctx, deck.ID, "After", "edited", settings)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, 7, updated.Settings.NewCardsPerDay)

	stored, err := env.svc.GetDeckByName(ctx, "after")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, stored.ID)

	_, err = env.svc.UpdateDeck(ctx, uuid.New(), "Ghost", "", settings)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestStudyService_RecordReview_FirstGood(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Reviews")
	card := env.mustCreateCard(t, deck.ID, "勉強")

	updated, err := env.svc.RecordReview(ctx, card.ID, domain.RatingGood, 4000)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.State.Interval)
	assert.Equal(t, 1, updated.State.Repetitions)
	assert.Equal(t, domain.CardStatusLearning, updated.Status)
	assert.True(t, updated.State.DueAt.Equal(testNow.AddDate(0, 0, 1)))
	assert.True(t, updated.State.LastReviewedAt.Equal(testNow))

	// The log captures the before and after states.
	logs, err := env.reviews.GetByCard(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.RatingGood, logs[0].Rating)
	assert.Equal(t, 0, logs[0].PreviousState.Repetitions)
	assert.Equal(t, 1, logs[0].NewState.Repetitions)

	// The day's counters reflect a correct answer on a new card.
	dayStats, err := env.stats.Get(ctx, domain.DateKey(testNow), deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dayStats.Reviewed)
	assert.Equal(t, 1, dayStats.NewLearned)
	assert.Equal(t, 1, dayStats.Correct)
	assert.Equal(t, 0, dayStats.Incorrect)
	assert.Equal(t, int64(4000), dayStats.StudyTimeMs)
}

func TestStudyService_RecordReview_AgainResetsAndCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Lapses")
	card := env.mustCreateCard(t, deck.ID, "難しい")

	_, err := env.svc.RecordReview(ctx, card.ID, domain.RatingGood, 2000)
	require.NoError(t, err)

	*env.now = testNow.AddDate(0, 0, 1)
	updated, err := env.svc.RecordReview(ctx, card.ID, domain.RatingAgain, 6000)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.State.Repetitions)
	assert.Equal(t, 1, updated.State.Interval)
	assert.Equal(t, domain.CardStatusLearning, updated.Status)

	dayStats, err := env.stats.Get(ctx, domain.DateKey(*env.now), deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dayStats.Reviewed)
	assert.Equal(t, 0, dayStats.NewLearned, "card was no longer new on day two")
	assert.Equal(t, 1, dayStats.Incorrect)
}

func TestStudyService_RecordReview_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Errors")
	card := env.mustCreateCard(t, deck.ID, "語")

	_, err := env.svc.RecordReview(ctx, card.ID, domain.Rating(9), 1000)
	assert.ErrorIs(t, err, srs.ErrInvalidRating)

	_, err = env.svc.RecordReview(ctx, card.ID, domain.RatingGood, -1)
	assert.ErrorIs(t, err, domain.ErrNegativeResponseTime)

	_, err = env.svc.RecordReview(ctx, uuid.New(), domain.RatingGood, 1000)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	// Nothing leaked into the store from the failed attempts.
	logs, err := env.reviews.GetByCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStudyService_DeleteDeck_Cascades(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Doomed")
	keep := env.mustCreateDeck(t, "Kept")

	cardA := env.mustCreateCard(t, deck.ID, "a")
	cardB := env.mustCreateCard(t, deck.ID, "b")
	keptCard := env.mustCreateCard(t, keep.ID, "c")

	for _, id := range []uuid.UUID{cardA.ID, cardB.ID, cardA.ID} {
		_, err := env.svc.RecordReview(ctx, id, domain.RatingGood, 1000)
		require.NoError(t, err)
	}
	_, err := env.svc.RecordReview(ctx, keptCard.ID, domain.RatingGood, 1000)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteDeck(ctx, deck.ID))

	_, err = env.svc.GetDeck(ctx, deck.ID)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	cards, err := env.cards.GetByDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)

	logs, err := env.reviews.GetByDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = env.stats.Get(ctx, domain.DateKey(testNow), deck.ID)
	assert.ErrorIs(t, err, store.ErrDailyStatsNotFound)

	// The other deck is untouched.
	keptLogs, err := env.reviews.GetByDeck(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, keptLogs, 1)

	// Deleting again is a no-op.
	assert.NoError(t, env.svc.DeleteDeck(ctx, deck.ID))
}

func TestStudyService_DeleteCard_Cascades(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Card Cascade")
	card := env.mustCreateCard(t, deck.ID, "消える")
	sibling := env.mustCreateCard(t, deck.ID, "残る")

	_, err := env.svc.RecordReview(ctx, card.ID, domain.RatingGood, 1000)
	require.NoError(t, err)
	_, err = env.svc.RecordReview(ctx, sibling.ID, domain.RatingGood, 1000)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteCard(ctx, card.ID))

	_, err = env.svc.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	logs, err := env.reviews.GetByCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	siblingLogs, err := env.reviews.GetByCard(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Len(t, siblingLogs, 1)
}

func TestStudyService_MoveCard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	from := env.mustCreateDeck(t, "From")
	to := env.mustCreateDeck(t, "To")
	card := env.mustCreateCard(t, from.ID, "引っ越し")

	moved, err := env.svc.MoveCard(ctx, card.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.DeckID)

	stored, err := env.svc.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, stored.DeckID)

	_, err = env.svc.MoveCard(ctx, card.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestStudyService_SetCardSuspended(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Suspension")
	card := env.mustCreateCard(t, deck.ID, "休み")

	suspended, err := env.svc.SetCardSuspended(ctx, card.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusSuspended, suspended.Status)

	// Suspended cards do not count as due or new.
	newCards, err := env.svc.GetNewCards(ctx, deck.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, newCards)

	restored, err := env.svc.SetCardSuspended(ctx, card.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusNew, restored.Status, "status is re-derived from state")
}

func TestStudyService_DueAndNewQueries(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	deck := env.mustCreateDeck(t, "Queues")
	reviewed := env.mustCreateCard(t, deck.ID, "既習")
	env.mustCreateCard(t, deck.ID, "未習")

	_, err := env.svc.RecordReview(ctx, reviewed.ID, domain.RatingGood, 1000)
	require.NoError(t, err)

	// One day later the reviewed card is due again.
	*env.now = testNow.AddDate(0, 0, 1)

	due, err := env.svc.GetDueCards(ctx, deck.ID, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, reviewed.ID, due[0].ID)

	newCards, err := env.svc.GetNewCards(ctx, deck.ID, 0)
	require.NoError(t, err)
	assert.Len(t, newCards, 1)

	count, err := env.svc.CountDueCards(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	history, err := env.svc.GetCardReviewHistory(ctx, reviewed.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
