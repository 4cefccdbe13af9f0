package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
	"github.com/hakusan/kioku/internal/platform/sqlite"
)

// newTestDB opens a fresh in-memory database with the schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(sqlite.InMemoryDSN, discardLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustCreateDeck inserts a deck with default settings and returns it.
func mustCreateDeck(t *testing.T, db *sql.DB, name string, now time.Time) *domain.Deck {
	t.Helper()

	deck, err := domain.NewDeck(name, "", domain.DefaultDeckSettings(), now)
	require.NoError(t, err)

	deckStore := sqlite.NewDeckStore(db, discardLogger())
	require.NoError(t, deckStore.Create(context.Background(), deck))

	return deck
}

// mustCreateCard inserts a card with the given payload and returns it.
func mustCreateCard(t *testing.T, db *sql.DB, payload domain.CardPayload, now time.Time) *domain.Flashcard {
	t.Helper()

	card, err := domain.NewCard(payload, srs.DetermineStatus, now)
	require.NoError(t, err)

	cardStore := sqlite.NewCardStore(db, discardLogger())
	require.NoError(t, cardStore.Create(context.Background(), card))

	return card
}

// basicPayload builds a minimal valid card payload for a deck.
func basicPayload(deckID uuid.UUID, front string, now time.Time) domain.CardPayload {
	return domain.CardPayload{
		DeckID: deckID,
		Front:  front,
		Back:   front + " meaning",
		State:  domain.NewSchedulingState(now),
	}
}
