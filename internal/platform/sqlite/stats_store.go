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

// StatsStore implements the store.StatsStore interface using a SQLite
// database as the storage backend. Rows are keyed by (date, deck).
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a new SQLite implementation of the StatsStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure StatsStore implements store.StatsStore interface
var _ store.StatsStore = (*StatsStore)(nil)

// WithTx implements store.StatsStore.WithTx
// It returns a copy of the store bound to the given transaction.
func (s *StatsStore) WithTx(tx *sql.Tx) store.StatsStore {
	return &StatsStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.StatsStore.Get
// Returns store.ErrDailyStatsNotFound if no row exists for the day and deck.
func (s *StatsStore) Get(ctx context.Context, date string, deckID uuid.UUID) (*domain.DailyStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT date, deck_id, reviewed, new_learned, correct, incorrect, study_time_ms
		FROM daily_stats
		WHERE date = ? AND deck_id = ?
	`

	stats, err := s.scanStats(s.db.QueryRowContext(ctx, query, date, deckID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDailyStatsNotFound
		}

		log.Error("failed to get daily stats",
			slog.String("error", err.Error()),
			slog.String("date", date),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}

	return stats, nil
}

// Upsert implements store.StatsStore.Upsert
// It inserts the row or replaces the existing one for its (date, deck) key.
func (s *StatsStore) Upsert(ctx context.Context, stats *domain.DailyStats) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stats.Validate(); err != nil {
		log.Warn("daily stats validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("date", stats.Date))
		return err
	}

	query := `
		INSERT INTO daily_stats (
			date, deck_id, reviewed, new_learned, correct, incorrect, study_time_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, deck_id) DO UPDATE SET
			reviewed = excluded.reviewed,
			new_learned = excluded.new_learned,
			correct = excluded.correct,
			incorrect = excluded.incorrect,
			study_time_ms = excluded.study_time_ms
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		stats.Date,
		stats.DeckID.String(),
		stats.Reviewed,
		stats.NewLearned,
		stats.Correct,
		stats.Incorrect,
		stats.StudyTimeMs,
	)

	if err != nil {
		log.Error("failed to upsert daily stats",
			slog.String("error", err.Error()),
			slog.String("date", stats.Date),
			slog.String("deck_id", stats.DeckID.String()))
		return err
	}

	log.Debug("daily stats upserted",
		slog.String("date", stats.Date),
		slog.String("deck_id", stats.DeckID.String()),
		slog.Int("reviewed", stats.Reviewed))
	return nil
}

// GetRange implements store.StatsStore.GetRange
// Both bounds are inclusive YYYY-MM-DD keys; the text comparison matches
// chronological order. A nil deck ID spans all decks.
func (s *StatsStore) GetRange(
	ctx context.Context,
	start, end string,
	deckID uuid.UUID,
) ([]*domain.DailyStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT date, deck_id, reviewed, new_learned, correct, incorrect, study_time_ms
		FROM daily_stats
		WHERE date >= ? AND date <= ?
	`
	args := []any{start, end}

	if deckID != uuid.Nil {
		query += ` AND deck_id = ?`
		args = append(args, deckID.String())
	}

	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query daily stats", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []*domain.DailyStats
	for rows.Next() {
		stats, err := s.scanStats(rows)
		if err != nil {
			log.Error("failed to scan daily stats row", slog.String("error", err.Error()))
			return nil, err
		}
		results = append(results, stats)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating daily stats rows", slog.String("error", err.Error()))
		return nil, err
	}

	return results, nil
}

// DeleteByDeck implements store.StatsStore.DeleteByDeck
func (s *StatsStore) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM daily_stats WHERE deck_id = ?`

	result, err := s.db.ExecContext(ctx, query, deckID.String())
	if err != nil {
		log.Error("failed to delete deck daily stats",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return err
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("deck daily stats deleted",
			slog.String("deck_id", deckID.String()),
			slog.Int64("count", n))
	}
	return nil
}

// scanStats maps one daily_stats row onto a domain.DailyStats.
func (s *StatsStore) scanStats(row rowScanner) (*domain.DailyStats, error) {
	var (
		stats  domain.DailyStats
		deckID string
	)

	err := row.Scan(
		&stats.Date,
		&deckID,
		&stats.Reviewed,
		&stats.NewLearned,
		&stats.Correct,
		&stats.Incorrect,
		&stats.StudyTimeMs,
	)
	if err != nil {
		return nil, err
	}

	statsDeckID, err := uuid.Parse(deckID)
	if err != nil {
		return nil, fmt.Errorf("invalid deck ID in database: %w", err)
	}

	stats.DeckID = statsDeckID

	return &stats, nil
}
