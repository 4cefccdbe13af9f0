package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/platform/sqlite"
	"github.com/hakusan/kioku/internal/store"
)

func TestStatsStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	statsStore := sqlite.NewStatsStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deck := mustCreateDeck(t, db, "Counters", now)
	date := domain.DateKey(now)

	_, err := statsStore.Get(ctx, date, deck.ID)
	assert.ErrorIs(t, err, store.ErrDailyStatsNotFound)

	stats, err := domain.NewDailyStats(date, deck.ID)
	require.NoError(t, err)

	stats = stats.WithReview(domain.RatingGood, 3000, true)
	require.NoError(t, statsStore.Upsert(ctx, stats))

	got, err := statsStore.Get(ctx, date, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reviewed)
	assert.Equal(t, 1, got.NewLearned)
	assert.Equal(t, 1, got.Correct)
	assert.Equal(t, 0, got.Incorrect)
	assert.Equal(t, int64(3000), got.StudyTimeMs)

	// A second upsert for the same key replaces the counters.
	stats = got.WithReview(domain.RatingAgain, 5000, false)
	require.NoError(t, statsStore.Upsert(ctx, stats))

	got, err = statsStore.Get(ctx, date, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Reviewed)
	assert.Equal(t, 1, got.NewLearned)
	assert.Equal(t, 1, got.Correct)
	assert.Equal(t, 1, got.Incorrect)
	assert.Equal(t, int64(8000), got.StudyTimeMs)
}

func TestStatsStore_GetRange(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	statsStore := sqlite.NewStatsStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deckA := mustCreateDeck(t, db, "Stats A", now)
	deckB := mustCreateDeck(t, db, "Stats B", now)

	seed := func(deckID uuid.UUID, date string, reviewed int) {
		stats, err := domain.NewDailyStats(date, deckID)
		require.NoError(t, err)
		stats.Reviewed = reviewed
		require.NoError(t, statsStore.Upsert(ctx, stats))
	}

	seed(deckA.ID, "2024-03-10", 5)
	seed(deckA.ID, "2024-03-14", 8)
	seed(deckB.ID, "2024-03-14", 3)
	seed(deckA.ID, "2024-03-20", 2)

	all, err := statsStore.GetRange(ctx, "2024-03-10", "2024-03-15", uuid.Nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-10", all[0].Date, "rows come back in date order")

	deckOnly, err := statsStore.GetRange(ctx, "2024-03-12", "2024-03-21", deckA.ID)
	require.NoError(t, err)
	require.Len(t, deckOnly, 2)
	assert.Equal(t, 8, deckOnly[0].Reviewed)
	assert.Equal(t, 2, deckOnly[1].Reviewed)
}

func TestStatsStore_DeleteByDeck(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	statsStore := sqlite.NewStatsStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deck := mustCreateDeck(t, db, "Stats Cleanup", now)
	keep := mustCreateDeck(t, db, "Stats Keep", now)

	for _, deckID := range []uuid.UUID{deck.ID, keep.ID} {
		stats, err := domain.NewDailyStats("2024-03-15", deckID)
		require.NoError(t, err)
		stats.Reviewed = 1
		require.NoError(t, statsStore.Upsert(ctx, stats))
	}

	require.NoError(t, statsStore.DeleteByDeck(ctx, deck.ID))

	_, err := statsStore.Get(ctx, "2024-03-15", deck.ID)
	assert.ErrorIs(t, err, store.ErrDailyStatsNotFound)

	kept, err := statsStore.Get(ctx, "2024-03-15", keep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, kept.Reviewed)
}
