package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
	"github.com/hakusan/kioku/internal/platform/logger"
	"github.com/hakusan/kioku/internal/store"
)

// StudyService defines the application-level operations over decks, cards
// and reviews. Every multi-entity mutation (review recording, the delete
// cascades) is atomic: it either fully applies or leaves the store untouched.
type StudyService interface {
	// CreateDeck creates a deck with the given name and description.
	// A nil settings pointer applies the default deck settings.
	CreateDeck(ctx context.Context, name, description string, settings *domain.DeckSettings) (*domain.Deck, error)

	// GetDeck retrieves a deck by ID.
	GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetDeckByName retrieves a deck by name, compared case-insensitively.
	GetDeckByName(ctx context.Context, name string) (*domain.Deck, error)

	// ListDecks retrieves every deck, ordered by name.
	ListDecks(ctx context.Context) ([]*domain.Deck, error)

	// UpdateDeck applies the given name, description and settings to an
	// existing deck and returns the updated deck.
	UpdateDeck(ctx context.Context, id uuid.UUID, name, description string, settings domain.DeckSettings) (*domain.Deck, error)

	// DeleteDeck removes a deck together with its cards, review history and
	// daily statistics in one transaction. Deleting a missing deck is a no-op.
	DeleteDeck(ctx context.Context, id uuid.UUID) error

	// CreateCard creates a single card from a payload.
	CreateCard(ctx context.Context, payload domain.CardPayload) (*domain.Flashcard, error)

	// CreateCards creates all payloads in one transaction: either every card
	// is created or none are.
	CreateCards(ctx context.Context, payloads []domain.CardPayload) ([]*domain.Flashcard, error)

	// GetCard retrieves a card by ID.
	GetCard(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// ListCards retrieves all cards in a deck, oldest first.
	ListCards(ctx context.Context, deckID uuid.UUID) ([]*domain.Flashcard, error)

	// DeleteCard removes a card and its review history in one transaction.
	DeleteCard(ctx context.Context, id uuid.UUID) error

	// DeleteCards removes several cards and their review histories in one
	// transaction.
	DeleteCards(ctx context.Context, ids []uuid.UUID) error

	// MoveCard moves a card into another deck and returns the updated card.
	MoveCard(ctx context.Context, cardID, deckID uuid.UUID) (*domain.Flashcard, error)

	// SetCardSuspended toggles a card's suspension and returns the updated
	// card. Unsuspending re-derives the status from the scheduling state.
	SetCardSuspended(ctx context.Context, cardID uuid.UUID, suspended bool) (*domain.Flashcard, error)

	// RecordReview applies a rating to a card: the scheduling state advances,
	// an immutable review log is appended, and the day's statistics row is
	// updated, all in one transaction. Returns the updated card.
	RecordReview(ctx context.Context, cardID uuid.UUID, rating domain.Rating, responseTimeMs int64) (*domain.Flashcard, error)

	// GetDueCards retrieves a deck's due cards, most overdue first.
	// A limit of 0 means unlimited.
	GetDueCards(ctx context.Context, deckID uuid.UUID, limit int) ([]*domain.Flashcard, error)

	// GetNewCards retrieves a deck's unstudied cards, oldest first.
	// A limit of 0 means unlimited.
	GetNewCards(ctx context.Context, deckID uuid.UUID, limit int) ([]*domain.Flashcard, error)

	// CountDueCards counts due cards; a nil deck ID spans all decks.
	CountDueCards(ctx context.Context, deckID uuid.UUID) (int, error)

	// GetCardReviewHistory retrieves a card's review logs, most recent first.
	GetCardReviewHistory(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error)
}

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db        *sql.DB
	decks     store.DeckStore
	cards     store.CardStore
	reviews   store.ReviewStore
	stats     store.StatsStore
	scheduler srs.Service
	now       func() time.Time
	logger    *slog.Logger
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil. The nowFn
// parameter supplies the service's clock; pass nil to use time.Now.
func NewStudyService(
	db *sql.DB,
	decks store.DeckStore,
	cards store.CardStore,
	reviews store.ReviewStore,
	stats store.StatsStore,
	scheduler srs.Service,
	logger *slog.Logger,
	nowFn func() time.Time,
) (StudyService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if decks == nil {
		return nil, fmt.Errorf("%w: deck store cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}
	if reviews == nil {
		return nil, fmt.Errorf("%w: review store cannot be nil", domain.ErrValidation)
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: stats store cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, fmt.Errorf("%w: scheduler cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &studyServiceImpl{
		db:        db,
		decks:     decks,
		cards:     cards,
		reviews:   reviews,
		stats:     stats,
		scheduler: scheduler,
		now:       nowFn,
		logger:    logger.With(slog.String("component", "study_service")),
	}, nil
}

// CreateDeck implements StudyService.CreateDeck
func (s *studyServiceImpl) CreateDeck(
	ctx context.Context,
	name, description string,
	settings *domain.DeckSettings,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deckSettings := domain.DefaultDeckSettings()
	if settings != nil {
		deckSettings = *settings
	}

	deck, err := domain.NewDeck(name, description, deckSettings, s.now())
	if err != nil {
		return nil, NewStudyServiceError("create_deck", "invalid deck", err)
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		if errors.Is(err, store.ErrDeckNameExists) {
			return nil, err
		}
		return nil, NewStudyServiceError("create_deck", "failed to save deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("deck_name", deck.Name))
	return deck, nil
}

// GetDeck implements StudyService.GetDeck
func (s *studyServiceImpl) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return s.decks.GetByID(ctx, id)
}

// GetDeckByName implements StudyService.GetDeckByName
func (s *studyServiceImpl) GetDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	return s.decks.GetByName(ctx, name)
}

// ListDecks implements StudyService.ListDecks
func (s *studyServiceImpl) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	return s.decks.GetAll(ctx)
}

// UpdateDeck implements StudyService.UpdateDeck
func (s *studyServiceImpl) UpdateDeck(
	ctx context.Context,
	id uuid.UUID,
	name, description string,
	settings domain.DeckSettings,
) (*domain.Deck, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := deck.WithUpdates(name, description, settings, s.now())
	if err := s.decks.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteDeck implements StudyService.DeleteDeck
// Children are removed before the deck row so foreign keys hold at every
// point inside the transaction.
func (s *studyServiceImpl) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.reviews.WithTx(tx).DeleteByDeck(ctx, id); err != nil {
			return NewStudyServiceError("delete_deck", "failed to delete review logs", err)
		}
		if err := s.stats.WithTx(tx).DeleteByDeck(ctx, id); err != nil {
			return NewStudyServiceError("delete_deck", "failed to delete daily stats", err)
		}
		if err := s.cards.WithTx(tx).DeleteByDeck(ctx, id); err != nil {
			return NewStudyServiceError("delete_deck", "failed to delete cards", err)
		}
		if err := s.decks.WithTx(tx).Delete(ctx, id); err != nil {
			return NewStudyServiceError("delete_deck", "failed to delete deck", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("deck deleted with cascade", slog.String("deck_id", id.String()))
	return nil
}

// CreateCard implements StudyService.CreateCard
func (s *studyServiceImpl) CreateCard(ctx context.Context, payload domain.CardPayload) (*domain.Flashcard, error) {
	cards, err := s.CreateCards(ctx, []domain.CardPayload{payload})
	if err != nil {
		return nil, err
	}
	return cards[0], nil
}

// CreateCards implements StudyService.CreateCards
func (s *studyServiceImpl) CreateCards(
	ctx context.Context,
	payloads []domain.CardPayload,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(payloads) == 0 {
		return nil, nil
	}

	now := s.now()
	cards := make([]*domain.Flashcard, 0, len(payloads))
	for _, payload := range payloads {
		card, err := domain.NewCard(payload, srs.DetermineStatus, now)
		if err != nil {
			return nil, NewStudyServiceError("create_cards", "invalid card", err)
		}
		cards = append(cards, card)
	}

	if err := s.cards.CreateMultiple(ctx, cards); err != nil {
		return nil, NewStudyServiceError("create_cards", "failed to save cards", err)
	}

	log.Info("cards created", slog.Int("count", len(cards)))
	return cards, nil
}

// GetCard implements StudyService.GetCard
func (s *studyServiceImpl) GetCard(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	return s.cards.GetByID(ctx, id)
}

// ListCards implements StudyService.ListCards
func (s *studyServiceImpl) ListCards(ctx context.Context, deckID uuid.UUID) ([]*domain.Flashcard, error) {
	return s.cards.GetByDeck(ctx, deckID)
}

// DeleteCard implements StudyService.DeleteCard
func (s *studyServiceImpl) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return s.DeleteCards(ctx, []uuid.UUID{id})
}

// DeleteCards implements StudyService.DeleteCards
func (s *studyServiceImpl) DeleteCards(ctx context.Context, ids []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cards.WithTx(tx)
		txReviews := s.reviews.WithTx(tx)

		for _, id := range ids {
			if err := txReviews.DeleteByCard(ctx, id); err != nil {
				return NewStudyServiceError("delete_cards", "failed to delete review logs", err)
			}
			if err := txCards.Delete(ctx, id); err != nil {
				return NewStudyServiceError("delete_cards", "failed to delete card", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("cards deleted with cascade", slog.Int("count", len(ids)))
	return nil
}

// MoveCard implements StudyService.MoveCard
func (s *studyServiceImpl) MoveCard(ctx context.Context, cardID, deckID uuid.UUID) (*domain.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	// The target deck must exist; a dangling deck ID would otherwise only
	// surface as a foreign key failure.
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, err
	}

	updated := card.WithDeck(deckID, s.now())
	if err := s.cards.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// SetCardSuspended implements StudyService.SetCardSuspended
func (s *studyServiceImpl) SetCardSuspended(
	ctx context.Context,
	cardID uuid.UUID,
	suspended bool,
) (*domain.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	updated := card.WithSuspended(suspended, srs.DetermineStatus, s.now())
	if err := s.cards.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// RecordReview implements StudyService.RecordReview
// The card-state update, the review log insert and the daily stats upsert
// form one transaction so history and counters can never drift from the
// cards they describe.
func (s *studyServiceImpl) RecordReview(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.Rating,
	responseTimeMs int64,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !rating.IsValid() {
		return nil, srs.ErrInvalidRating
	}
	if responseTimeMs < 0 {
		return nil, domain.ErrNegativeResponseTime
	}

	now := s.now()
	var updated *domain.Flashcard

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cards.WithTx(tx)
		txReviews := s.reviews.WithTx(tx)
		txStats := s.stats.WithTx(tx)

		card, err := txCards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}

		wasNew := card.Status == domain.CardStatusNew

		nextState, err := s.scheduler.CalculateNextState(card.State, rating, now)
		if err != nil {
			return NewStudyServiceError("record_review", "failed to schedule card", err)
		}

		reviewLog, err := domain.NewReviewLog(
			card.ID, card.DeckID, rating, responseTimeMs, card.State, nextState, now,
		)
		if err != nil {
			return NewStudyServiceError("record_review", "invalid review log", err)
		}
		if err := txReviews.Create(ctx, reviewLog); err != nil {
			return NewStudyServiceError("record_review", "failed to save review log", err)
		}

		updated = card.WithState(nextState, srs.DetermineStatus(nextState), now)
		if err := txCards.Update(ctx, updated); err != nil {
			return NewStudyServiceError("record_review", "failed to update card", err)
		}

		date := domain.DateKey(now)
		dayStats, err := txStats.Get(ctx, date, card.DeckID)
		if errors.Is(err, store.ErrDailyStatsNotFound) {
			dayStats, err = domain.NewDailyStats(date, card.DeckID)
		}
		if err != nil {
			return NewStudyServiceError("record_review", "failed to load daily stats", err)
		}

		if err := txStats.Upsert(ctx, dayStats.WithReview(rating, responseTimeMs, wasNew)); err != nil {
			return NewStudyServiceError("record_review", "failed to update daily stats", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("rating", rating.String()),
		slog.Int("interval", updated.State.Interval))
	return updated, nil
}

// GetDueCards implements StudyService.GetDueCards
func (s *studyServiceImpl) GetDueCards(ctx context.Context, deckID uuid.UUID, limit int) ([]*domain.Flashcard, error) {
	return s.cards.GetDue(ctx, deckID, s.now(), limit)
}

// GetNewCards implements StudyService.GetNewCards
func (s *studyServiceImpl) GetNewCards(ctx context.Context, deckID uuid.UUID, limit int) ([]*domain.Flashcard, error) {
	return s.cards.GetNew(ctx, deckID, limit)
}

// CountDueCards implements StudyService.CountDueCards
func (s *studyServiceImpl) CountDueCards(ctx context.Context, deckID uuid.UUID) (int, error) {
	return s.cards.CountDue(ctx, deckID, s.now())
}

// GetCardReviewHistory implements StudyService.GetCardReviewHistory
func (s *studyServiceImpl) GetCardReviewHistory(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewLog, error) {
	return s.reviews.GetByCard(ctx, cardID)
}
