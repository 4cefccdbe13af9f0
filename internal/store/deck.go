package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
)

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// Returns ErrDeckNameExists if a deck with the same name already
	// exists; names are compared case-insensitively.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetByName retrieves a deck by name, compared case-insensitively.
	// Returns ErrDeckNotFound if no deck matches.
	GetByName(ctx context.Context, name string) (*domain.Deck, error)

	// GetAll retrieves every deck, ordered by name.
	GetAll(ctx context.Context) ([]*domain.Deck, error)

	// Update saves changes to an existing deck.
	// Returns ErrDeckNotFound if the deck does not exist and
	// ErrDeckNameExists if the new name collides with another deck.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the deck row only. Callers that need the full cascade
	// (cards, reviews, daily stats) must run it together with the child
	// deletions inside RunInTransaction; see service.StudyService.DeleteDeck.
	// Deleting a missing deck is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a copy of this store bound to the given transaction,
	// so multi-entity operations can share one atomic unit of work.
	WithTx(tx *sql.Tx) DeckStore
}
