package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
)

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Create saves a new card to the store. The card's status must already
	// be derived from its scheduling state (domain.NewCard does this).
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMultiple saves multiple cards in one atomic transaction:
	// either all cards are created or none. Implementations open their own
	// transaction when bound to a plain connection.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// GetByDeck retrieves all cards in a deck, ordered by creation time.
	GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Flashcard, error)

	// GetAll retrieves every card across all decks.
	GetAll(ctx context.Context) ([]*domain.Flashcard, error)

	// GetDue retrieves cards in a deck that are not suspended, not new,
	// and due at or before now, most overdue first. A limit of 0 means
	// unlimited.
	GetDue(ctx context.Context, deckID uuid.UUID, now time.Time, limit int) ([]*domain.Flashcard, error)

	// GetNew retrieves cards in a deck that have never been reviewed and
	// are not suspended, oldest first. A limit of 0 means unlimited.
	GetNew(ctx context.Context, deckID uuid.UUID, limit int) ([]*domain.Flashcard, error)

	// GetByStatus retrieves cards in a deck with the given status, using
	// the compound (deck, status) index.
	GetByStatus(ctx context.Context, deckID uuid.UUID, status domain.CardStatus) ([]*domain.Flashcard, error)

	// FindBySource scans a deck for a card whose source matches the given
	// variant discriminant (the vocabulary word or the kanji character).
	// Used to prevent duplicate import of the same item into a deck.
	// Returns ErrCardNotFound when no card matches.
	FindBySource(
		ctx context.Context,
		deckID uuid.UUID,
		sourceType domain.SourceType,
		sourceKey string,
	) (*domain.Flashcard, error)

	// Update saves changes to an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Flashcard) error

	// Delete removes the card row only; review history cleanup belongs to
	// the same transaction (see service.StudyService.DeleteCard).
	// Deleting a missing card is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByDeck removes all cards belonging to a deck. Part of the deck
	// delete cascade; must run inside that cascade's transaction.
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error

	// CountDue counts non-suspended cards due at or before now. A nil
	// deckID (uuid.Nil) counts across all decks.
	CountDue(ctx context.Context, deckID uuid.UUID, now time.Time) (int, error)

	// WithTx returns a copy of this store bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
