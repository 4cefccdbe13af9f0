package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/platform/logger"
	"github.com/hakusan/kioku/internal/store"
)

// cardColumns is the shared select list for card queries; scanCard depends
// on this exact column order.
const cardColumns = `
	id, deck_id, front, back, front_reading, back_reading,
	notes, tags, source,
	ease_factor, interval_days, repetitions, due_at, last_reviewed_at,
	status, created_at, updated_at
`

// CardStore implements the store.CardStore interface using a SQLite
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new SQLite implementation of the CardStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx
// It returns a copy of the store bound to the given transaction.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
func (s *CardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	if err := s.insert(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return err
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// CreateMultiple implements store.CardStore.CreateMultiple
// It saves all cards in one transaction: either every card is created or
// none are. When the store is already bound to a transaction the inserts
// simply join it.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	insertAll := func(cs store.CardStore) error {
		impl := cs.(*CardStore)
		for _, card := range cards {
			if err := impl.insert(ctx, card); err != nil {
				return fmt.Errorf("failed to create card %s: %w", card.ID, err)
			}
		}
		return nil
	}

	// Already inside a caller-managed transaction: just run the inserts.
	if _, ok := s.db.(*sql.Tx); ok {
		if err := insertAll(s); err != nil {
			log.Error("failed to batch create cards", slog.String("error", err.Error()))
			return err
		}
		log.Info("cards created", slog.Int("count", len(cards)))
		return nil
	}

	db, ok := s.db.(*sql.DB)
	if !ok {
		return fmt.Errorf("%w: store is not bound to a database connection",
			store.ErrTransactionFailed)
	}

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return insertAll(s.WithTx(tx))
	})
	if err != nil {
		log.Error("failed to batch create cards", slog.String("error", err.Error()))
		return err
	}

	log.Info("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`

	card, err := s.scanCard(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}

		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// GetByDeck implements store.CardStore.GetByDeck
// Cards are returned oldest first.
func (s *CardStore) GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Flashcard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE deck_id = ? ORDER BY created_at`
	return s.queryCards(ctx, query, deckID.String())
}

// GetAll implements store.CardStore.GetAll
func (s *CardStore) GetAll(ctx context.Context) ([]*domain.Flashcard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at`
	return s.queryCards(ctx, query)
}

// GetDue implements store.CardStore.GetDue
// Due cards are previously-reviewed, non-suspended cards whose due instant
// is at or before now, ordered most overdue first.
func (s *CardStore) GetDue(
	ctx context.Context,
	deckID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ?
		  AND status IN (?, ?)
		  AND due_at <= ?
		ORDER BY due_at
	`
	args := []any{
		deckID.String(),
		string(domain.CardStatusLearning),
		string(domain.CardStatusReview),
		bindTime(now),
	}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryCards(ctx, query, args...)
}

// GetNew implements store.CardStore.GetNew
// New cards are returned oldest first so earlier additions are studied first.
func (s *CardStore) GetNew(
	ctx context.Context,
	deckID uuid.UUID,
	limit int,
) ([]*domain.Flashcard, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ? AND status = ?
		ORDER BY created_at
	`
	args := []any{deckID.String(), string(domain.CardStatusNew)}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryCards(ctx, query, args...)
}

// GetByStatus implements store.CardStore.GetByStatus
func (s *CardStore) GetByStatus(
	ctx context.Context,
	deckID uuid.UUID,
	status domain.CardStatus,
) ([]*domain.Flashcard, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ? AND status = ?
		ORDER BY created_at
	`
	return s.queryCards(ctx, query, deckID.String(), string(status))
}

// FindBySource implements store.CardStore.FindBySource
// Returns store.ErrCardNotFound when no card in the deck matches the
// source discriminant.
func (s *CardStore) FindBySource(
	ctx context.Context,
	deckID uuid.UUID,
	sourceType domain.SourceType,
	sourceKey string,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = ? AND source_type = ? AND source_key = ?
		ORDER BY created_at
		LIMIT 1
	`

	card, err := s.scanCard(s.db.QueryRowContext(
		ctx, query, deckID.String(), string(sourceType), sourceKey,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}

		log.Error("failed to find card by source",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()),
			slog.String("source_type", string(sourceType)))
		return nil, err
	}

	return card, nil
}

// Update implements store.CardStore.Update
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	blobs, err := encodeCardBlobs(card)
	if err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET deck_id = ?, front = ?, back = ?,
		    front_reading = ?, back_reading = ?, notes = ?, tags = ?,
		    source = ?, source_type = ?, source_key = ?,
		    ease_factor = ?, interval_days = ?, repetitions = ?,
		    due_at = ?, last_reviewed_at = ?,
		    status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.DeckID.String(),
		card.Front,
		card.Back,
		card.FrontReading,
		card.BackReading,
		card.Notes,
		blobs.tagsJSON,
		blobs.sourceJSON,
		blobs.sourceType,
		blobs.sourceKey,
		card.State.EaseFactor,
		card.State.Interval,
		card.State.Repetitions,
		bindTime(card.State.DueAt),
		nullableTime(card.State.LastReviewedAt),
		string(card.Status),
		bindTime(card.UpdatedAt),
		card.ID.String(),
	)

	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after card update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("card not found for update", slog.String("card_id", card.ID.String()))
		return store.ErrCardNotFound
	}

	log.Debug("card updated", slog.String("card_id", card.ID.String()))
	return nil
}

// Delete implements store.CardStore.Delete
// It removes the card row only; deleting a missing card is a no-op.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cards WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id.String()); err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// DeleteByDeck implements store.CardStore.DeleteByDeck
func (s *CardStore) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cards WHERE deck_id = ?`

	result, err := s.db.ExecContext(ctx, query, deckID.String())
	if err != nil {
		log.Error("failed to delete deck cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return err
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Info("deck cards deleted",
			slog.String("deck_id", deckID.String()),
			slog.Int64("count", n))
	}
	return nil
}

// CountDue implements store.CardStore.CountDue
// A nil deck ID counts due cards across every deck.
func (s *CardStore) CountDue(ctx context.Context, deckID uuid.UUID, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM cards
		WHERE status IN (?, ?) AND due_at <= ?
	`
	args := []any{
		string(domain.CardStatusLearning),
		string(domain.CardStatusReview),
		bindTime(now),
	}

	if deckID != uuid.Nil {
		query += ` AND deck_id = ?`
		args = append(args, deckID.String())
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count due cards", slog.String("error", err.Error()))
		return 0, err
	}

	return count, nil
}

// insert writes a single card row.
func (s *CardStore) insert(ctx context.Context, card *domain.Flashcard) error {
	blobs, err := encodeCardBlobs(card)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cards (
			id, deck_id, front, back, front_reading, back_reading,
			notes, tags, source, source_type, source_key,
			ease_factor, interval_days, repetitions, due_at, last_reviewed_at,
			status, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		card.ID.String(),
		card.DeckID.String(),
		card.Front,
		card.Back,
		card.FrontReading,
		card.BackReading,
		card.Notes,
		blobs.tagsJSON,
		blobs.sourceJSON,
		blobs.sourceType,
		blobs.sourceKey,
		card.State.EaseFactor,
		card.State.Interval,
		card.State.Repetitions,
		bindTime(card.State.DueAt),
		nullableTime(card.State.LastReviewedAt),
		string(card.Status),
		bindTime(card.CreatedAt),
		bindTime(card.UpdatedAt),
	)
	return err
}

// queryCards runs a multi-row card query and scans all results.
func (s *CardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Flashcard
	for rows.Next() {
		card, err := s.scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating card rows", slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}

// scanCard maps one cards row onto a domain.Flashcard, decoding the tags
// and source JSON columns.
func (s *CardStore) scanCard(row rowScanner) (*domain.Flashcard, error) {
	var (
		card           domain.Flashcard
		id             string
		deckID         string
		tagsJSON       string
		sourceJSON     string
		lastReviewedAt sql.NullTime
		status         string
	)

	err := row.Scan(
		&id,
		&deckID,
		&card.Front,
		&card.Back,
		&card.FrontReading,
		&card.BackReading,
		&card.Notes,
		&tagsJSON,
		&sourceJSON,
		&card.State.EaseFactor,
		&card.State.Interval,
		&card.State.Repetitions,
		&card.State.DueAt,
		&lastReviewedAt,
		&status,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID in database: %w", err)
	}
	cardDeckID, err := uuid.Parse(deckID)
	if err != nil {
		return nil, fmt.Errorf("invalid deck ID in database: %w", err)
	}

	tags := []string{}
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("invalid card tags in database: %w", err)
	}

	source, err := domain.UnmarshalCardSource([]byte(sourceJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid card source in database: %w", err)
	}

	card.ID = cardID
	card.DeckID = cardDeckID
	card.Tags = tags
	card.Source = source
	card.Status = domain.CardStatus(status)
	if lastReviewedAt.Valid {
		card.State.LastReviewedAt = lastReviewedAt.Time
	}

	return &card, nil
}

// cardBlobs holds the serialized forms of a card's tags and source, plus
// the denormalized source columns used for duplicate lookups.
type cardBlobs struct {
	tagsJSON   string
	sourceJSON string
	sourceType string
	sourceKey  string
}

// encodeCardBlobs serializes the tags list and source envelope for storage.
// A nil source is stored as a custom source.
func encodeCardBlobs(card *domain.Flashcard) (cardBlobs, error) {
	tags := card.Tags
	if tags == nil {
		tags = []string{}
	}

	tagsBytes, err := json.Marshal(tags)
	if err != nil {
		return cardBlobs{}, fmt.Errorf("failed to encode card tags: %w", err)
	}

	source := card.Source
	if source == nil {
		source = domain.CustomSource{}
	}

	sourceBytes, err := domain.MarshalCardSource(source)
	if err != nil {
		return cardBlobs{}, err
	}

	return cardBlobs{
		tagsJSON:   string(tagsBytes),
		sourceJSON: string(sourceBytes),
		sourceType: string(source.Type()),
		sourceKey:  source.Key(),
	}, nil
}
