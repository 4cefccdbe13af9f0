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

func TestDeckStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	settings := domain.DeckSettings{
		NewCardsPerDay:   10,
		ReviewsPerDay:    50,
		DefaultDirection: domain.DirectionTermFirst,
	}
	deck, err := domain.NewDeck("JLPT N3 Vocabulary", "Tango N3 units 1-10", settings, now)
	require.NoError(t, err)

	require.NoError(t, deckStore.Create(ctx, deck))

	got, err := deckStore.GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)
	assert.Equal(t, "JLPT N3 Vocabulary", got.Name)
	assert.Equal(t, "Tango N3 units 1-10", got.Description)
	assert.Equal(t, settings, got.Settings)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestDeckStore_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())

	_, err := deckStore.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestDeckStore_NameUniqueness(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	mustCreateDeck(t, db, "Kanji", now)

	dup, err := domain.NewDeck("kanji", "", domain.DefaultDeckSettings(), now)
	require.NoError(t, err)

	err = deckStore.Create(ctx, dup)
	assert.ErrorIs(t, err, store.ErrDeckNameExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestDeckStore_GetByName_CaseInsensitive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deck := mustCreateDeck(t, db, "Core Vocabulary", now)

	got, err := deckStore.GetByName(ctx, "core vocabulary")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)

	_, err = deckStore.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestDeckStore_GetAll_OrderedByName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	mustCreateDeck(t, db, "Grammar", now)
	mustCreateDeck(t, db, "Vocabulary", now)
	mustCreateDeck(t, db, "Kanji", now)

	decks, err := deckStore.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, decks, 3)
	assert.Equal(t, "Grammar", decks[0].Name)
	assert.Equal(t, "Kanji", decks[1].Name)
	assert.Equal(t, "Vocabulary", decks[2].Name)
}

func TestDeckStore_Update(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	deck := mustCreateDeck(t, db, "Old Name", now)

	settings := deck.Settings
	settings.NewCardsPerDay = 5
	updated := deck.WithUpdates("New Name", "renamed", settings, later)
	require.NoError(t, deckStore.Update(ctx, updated))

	got, err := deckStore.GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "renamed", got.Description)
	assert.Equal(t, 5, got.Settings.NewCardsPerDay)
	assert.True(t, got.UpdatedAt.Equal(later))
}

func TestDeckStore_Update_Errors(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deckA := mustCreateDeck(t, db, "Deck A", now)
	mustCreateDeck(t, db, "Deck B", now)

	// Renaming onto another deck's name collides.
	collision := deckA.WithUpdates("deck b", "", deckA.Settings, now)
	assert.ErrorIs(t, deckStore.Update(ctx, collision), store.ErrDeckNameExists)

	// Keeping your own name is fine.
	same := deckA.WithUpdates("Deck A", "described", deckA.Settings, now)
	assert.NoError(t, deckStore.Update(ctx, same))

	// Updating a deck that was never created reports not found.
	ghost, err := domain.NewDeck("Ghost", "", domain.DefaultDeckSettings(), now)
	require.NoError(t, err)
	assert.ErrorIs(t, deckStore.Update(ctx, ghost), store.ErrDeckNotFound)
}

func TestDeckStore_Delete(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	deckStore := sqlite.NewDeckStore(db, discardLogger())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	deck := mustCreateDeck(t, db, "Short Lived", now)

	require.NoError(t, deckStore.Delete(ctx, deck.ID))

	_, err := deckStore.GetByID(ctx, deck.ID)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, deckStore.Delete(ctx, deck.ID))
}
