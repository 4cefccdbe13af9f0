package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
)

// ReviewStore defines the interface for review log persistence.
// Review logs are append-only: there is no update operation, and deletion
// only ever happens as part of a card or deck cascade.
type ReviewStore interface {
	// Create appends a review log.
	Create(ctx context.Context, log *domain.ReviewLog) error

	// GetByCard retrieves a card's review history, most recent first.
	GetByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error)

	// GetByDeck retrieves all review logs for a deck.
	GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.ReviewLog, error)

	// GetByDateRange retrieves review logs whose review instant falls in
	// [start, end]. A nil deckID (uuid.Nil) spans all decks.
	GetByDateRange(
		ctx context.Context,
		deckID uuid.UUID,
		start, end time.Time,
	) ([]*domain.ReviewLog, error)

	// DeleteByCard removes a card's review history. Part of the card
	// delete cascade; must run inside that cascade's transaction.
	DeleteByCard(ctx context.Context, cardID uuid.UUID) error

	// DeleteByDeck removes a deck's review history. Part of the deck
	// delete cascade; must run inside that cascade's transaction.
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error

	// WithTx returns a copy of this store bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewStore
}

// StatsStore defines the interface for daily statistics persistence.
// Rows are keyed by the compound (date, deck) pair.
type StatsStore interface {
	// Get retrieves the stats row for a UTC calendar day and deck.
	// Returns ErrDailyStatsNotFound if no row exists yet.
	Get(ctx context.Context, date string, deckID uuid.UUID) (*domain.DailyStats, error)

	// Upsert inserts the row or replaces the existing one for its
	// (date, deck) key.
	Upsert(ctx context.Context, stats *domain.DailyStats) error

	// GetRange retrieves stats rows with date in [start, end], both
	// YYYY-MM-DD. A nil deckID (uuid.Nil) spans all decks.
	GetRange(ctx context.Context, start, end string, deckID uuid.UUID) ([]*domain.DailyStats, error)

	// DeleteByDeck removes a deck's stats rows. Part of the deck delete
	// cascade; must run inside that cascade's transaction.
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error

	// WithTx returns a copy of this store bound to the given transaction.
	WithTx(tx *sql.Tx) StatsStore
}
