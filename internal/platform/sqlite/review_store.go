package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/platform/logger"
	"github.com/hakusan/kioku/internal/store"
)

// reviewColumns is the shared select list for review queries; scanReview
// depends on this exact column order.
const reviewColumns = `
	id, card_id, deck_id, rating, response_time_ms,
	prev_ease_factor, prev_interval, prev_repetitions, prev_due_at, prev_last_reviewed_at,
	new_ease_factor, new_interval, new_repetitions, new_due_at, new_last_reviewed_at,
	reviewed_at
`

// ReviewStore implements the store.ReviewStore interface using a SQLite
// database as the storage backend. Review logs are append-only.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a new SQLite implementation of the ReviewStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewReviewStore(db store.DBTX, logger *slog.Logger) *ReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure ReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*ReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
// It returns a copy of the store bound to the given transaction.
func (s *ReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &ReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ReviewStore.Create
// It appends a review log, handling domain validation.
func (s *ReviewStore) Create(ctx context.Context, reviewLog *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reviewLog.Validate(); err != nil {
		log.Warn("review log validation failed during create",
			slog.String("error", err.Error()),
			slog.String("review_id", reviewLog.ID.String()))
		return err
	}

	query := `
		INSERT INTO reviews (
			id, card_id, deck_id, rating, response_time_ms,
			prev_ease_factor, prev_interval, prev_repetitions, prev_due_at, prev_last_reviewed_at,
			new_ease_factor, new_interval, new_repetitions, new_due_at, new_last_reviewed_at,
			reviewed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		reviewLog.ID.String(),
		reviewLog.CardID.String(),
		reviewLog.DeckID.String(),
		int(reviewLog.Rating),
		reviewLog.ResponseTimeMs,
		reviewLog.PreviousState.EaseFactor,
		reviewLog.PreviousState.Interval,
		reviewLog.PreviousState.Repetitions,
		bindTime(reviewLog.PreviousState.DueAt),
		nullableTime(reviewLog.PreviousState.LastReviewedAt),
		reviewLog.NewState.EaseFactor,
		reviewLog.NewState.Interval,
		reviewLog.NewState.Repetitions,
		bindTime(reviewLog.NewState.DueAt),
		nullableTime(reviewLog.NewState.LastReviewedAt),
		bindTime(reviewLog.ReviewedAt),
	)

	if err != nil {
		log.Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("review_id", reviewLog.ID.String()),
			slog.String("card_id", reviewLog.CardID.String()))
		return err
	}

	log.Debug("review log created",
		slog.String("review_id", reviewLog.ID.String()),
		slog.String("card_id", reviewLog.CardID.String()),
		slog.String("rating", reviewLog.Rating.String()))
	return nil
}

// GetByCard implements store.ReviewStore.GetByCard
// Logs are returned most recent first.
func (s *ReviewStore) GetByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE card_id = ?
		ORDER BY reviewed_at DESC
	`
	return s.queryReviews(ctx, query, cardID.String())
}

// GetByDeck implements store.ReviewStore.GetByDeck
func (s *ReviewStore) GetByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.ReviewLog, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE deck_id = ?
		ORDER BY reviewed_at
	`
	return s.queryReviews(ctx, query, deckID.String())
}

// GetByDateRange implements store.ReviewStore.GetByDateRange
// A nil deck ID spans all decks.
func (s *ReviewStore) GetByDateRange(
	ctx context.Context,
	deckID uuid.UUID,
	start, end time.Time,
) ([]*domain.ReviewLog, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewed_at >= ? AND reviewed_at <= ?
	`
	args := []any{bindTime(start), bindTime(end)}

	if deckID != uuid.Nil {
		query += ` AND deck_id = ?`
		args = append(args, deckID.String())
	}

	query += ` ORDER BY reviewed_at`

	return s.queryReviews(ctx, query, args...)
}

// DeleteByCard implements store.ReviewStore.DeleteByCard
func (s *ReviewStore) DeleteByCard(ctx context.Context, cardID uuid.UUID) error {
	return s.deleteWhere(ctx, `DELETE FROM reviews WHERE card_id = ?`, "card_id", cardID)
}

// DeleteByDeck implements store.ReviewStore.DeleteByDeck
func (s *ReviewStore) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	return s.deleteWhere(ctx, `DELETE FROM reviews WHERE deck_id = ?`, "deck_id", deckID)
}

func (s *ReviewStore) deleteWhere(ctx context.Context, query, keyName string, key uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, key.String())
	if err != nil {
		log.Error("failed to delete review logs",
			slog.String("error", err.Error()),
			slog.String(keyName, key.String()))
		return err
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("review logs deleted",
			slog.String(keyName, key.String()),
			slog.Int64("count", n))
	}
	return nil
}

// queryReviews runs a multi-row review query and scans all results.
func (s *ReviewStore) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review logs", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []*domain.ReviewLog
	for rows.Next() {
		reviewLog, err := s.scanReview(rows)
		if err != nil {
			log.Error("failed to scan review log row", slog.String("error", err.Error()))
			return nil, err
		}
		logs = append(logs, reviewLog)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating review log rows", slog.String("error", err.Error()))
		return nil, err
	}

	return logs, nil
}

// scanReview maps one reviews row onto a domain.ReviewLog.
func (s *ReviewStore) scanReview(row rowScanner) (*domain.ReviewLog, error) {
	var (
		reviewLog        domain.ReviewLog
		id, cardID       string
		deckID           string
		rating           int
		prevLastReviewed sql.NullTime
		newLastReviewed  sql.NullTime
	)

	err := row.Scan(
		&id,
		&cardID,
		&deckID,
		&rating,
		&reviewLog.ResponseTimeMs,
		&reviewLog.PreviousState.EaseFactor,
		&reviewLog.PreviousState.Interval,
		&reviewLog.PreviousState.Repetitions,
		&reviewLog.PreviousState.DueAt,
		&prevLastReviewed,
		&reviewLog.NewState.EaseFactor,
		&reviewLog.NewState.Interval,
		&reviewLog.NewState.Repetitions,
		&reviewLog.NewState.DueAt,
		&newLastReviewed,
		&reviewLog.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	logID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID in database: %w", err)
	}
	logCardID, err := uuid.Parse(cardID)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID in database: %w", err)
	}
	logDeckID, err := uuid.Parse(deckID)
	if err != nil {
		return nil, fmt.Errorf("invalid deck ID in database: %w", err)
	}

	reviewLog.ID = logID
	reviewLog.CardID = logCardID
	reviewLog.DeckID = logDeckID
	reviewLog.Rating = domain.Rating(rating)
	if prevLastReviewed.Valid {
		reviewLog.PreviousState.LastReviewedAt = prevLastReviewed.Time
	}
	if newLastReviewed.Valid {
		reviewLog.NewState.LastReviewedAt = newLastReviewed.Time
	}

	return &reviewLog, nil
}
