package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/platform/logger"
	"github.com/hakusan/kioku/internal/store"
)

// DeckStore implements the store.DeckStore interface using a SQLite
// database as the storage backend.
type DeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckStore creates a new SQLite implementation of the DeckStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewDeckStore(db store.DBTX, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
// It returns a copy of the store bound to the given transaction.
func (s *DeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &DeckStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.DeckStore.Create
// It saves a new deck, enforcing the case-insensitive name uniqueness rule.
// Returns store.ErrDeckNameExists when another deck already has the name.
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	if err := s.checkNameAvailable(ctx, deck.Name, deck.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO decks (
			id, name, description,
			new_cards_per_day, reviews_per_day, default_direction,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deck.ID.String(),
		deck.Name,
		deck.Description,
		deck.Settings.NewCardsPerDay,
		deck.Settings.ReviewsPerDay,
		string(deck.Settings.DefaultDirection),
		bindTime(deck.CreatedAt),
		bindTime(deck.UpdatedAt),
	)

	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	log.Info("deck created successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("deck_name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description,
		       new_cards_per_day, reviews_per_day, default_direction,
		       created_at, updated_at
		FROM decks
		WHERE id = ?
	`

	deck, err := s.scanDeck(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found", slog.String("deck_id", id.String()))
			return nil, store.ErrDeckNotFound
		}

		log.Error("failed to get deck by ID",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, err
	}

	return deck, nil
}

// GetByName implements store.DeckStore.GetByName
// The comparison is case-insensitive (the name column carries NOCASE
// collation). Returns store.ErrDeckNotFound if no deck matches.
func (s *DeckStore) GetByName(ctx context.Context, name string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description,
		       new_cards_per_day, reviews_per_day, default_direction,
		       created_at, updated_at
		FROM decks
		WHERE name = ?
	`

	deck, err := s.scanDeck(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found by name", slog.String("deck_name", name))
			return nil, store.ErrDeckNotFound
		}

		log.Error("failed to get deck by name",
			slog.String("error", err.Error()),
			slog.String("deck_name", name))
		return nil, err
	}

	return deck, nil
}

// GetAll implements store.DeckStore.GetAll
// Decks are returned ordered by name.
func (s *DeckStore) GetAll(ctx context.Context) ([]*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description,
		       new_cards_per_day, reviews_per_day, default_direction,
		       created_at, updated_at
		FROM decks
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query decks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := s.scanDeck(rows)
		if err != nil {
			log.Error("failed to scan deck row", slog.String("error", err.Error()))
			return nil, err
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating deck rows", slog.String("error", err.Error()))
		return nil, err
	}

	return decks, nil
}

// Update implements store.DeckStore.Update
// Returns store.ErrDeckNotFound if the deck does not exist and
// store.ErrDeckNameExists if the new name collides with another deck.
func (s *DeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during update",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	if err := s.checkNameAvailable(ctx, deck.Name, deck.ID); err != nil {
		return err
	}

	query := `
		UPDATE decks
		SET name = ?, description = ?,
		    new_cards_per_day = ?, reviews_per_day = ?, default_direction = ?,
		    updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		deck.Name,
		deck.Description,
		deck.Settings.NewCardsPerDay,
		deck.Settings.ReviewsPerDay,
		string(deck.Settings.DefaultDirection),
		bindTime(deck.UpdatedAt),
		deck.ID.String(),
	)

	if err != nil {
		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after deck update",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("deck not found for update", slog.String("deck_id", deck.ID.String()))
		return store.ErrDeckNotFound
	}

	log.Info("deck updated successfully", slog.String("deck_id", deck.ID.String()))
	return nil
}

// Delete implements store.DeckStore.Delete
// It removes the deck row only; deleting a missing deck is a no-op.
func (s *DeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM decks WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id.String()); err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return err
	}

	log.Info("deck deleted", slog.String("deck_id", id.String()))
	return nil
}

// checkNameAvailable returns store.ErrDeckNameExists when a deck other than
// selfID already carries the name. The store runs on a single connection, so
// the check-then-write pair is not racy.
func (s *DeckStore) checkNameAvailable(ctx context.Context, name string, selfID uuid.UUID) error {
	query := `SELECT id FROM decks WHERE name = ? AND id != ?`

	var existingID string
	err := s.db.QueryRowContext(ctx, query, name, selfID.String()).Scan(&existingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %q", store.ErrDeckNameExists, name)
}

// rowScanner abstracts sql.Row and sql.Rows so one scan helper serves both.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDeck maps one decks row onto a domain.Deck.
func (s *DeckStore) scanDeck(row rowScanner) (*domain.Deck, error) {
	var (
		deck      domain.Deck
		id        string
		direction string
	)

	err := row.Scan(
		&id,
		&deck.Name,
		&deck.Description,
		&deck.Settings.NewCardsPerDay,
		&deck.Settings.ReviewsPerDay,
		&direction,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deckID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid deck ID in database: %w", err)
	}

	deck.ID = deckID
	deck.Settings.DefaultDirection = domain.CardDirection(direction)

	return &deck, nil
}
