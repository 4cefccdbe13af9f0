package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors.
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// CardStatus classifies a card by learning progress. Apart from suspension
// it is fully derived from the scheduling state; the storage layer keeps it
// in sync on every write so it can be indexed.
type CardStatus string

// Possible card status values.
const (
	CardStatusNew       CardStatus = "new"       // never reviewed
	CardStatusLearning  CardStatus = "learning"  // reviewed, not yet graduated
	CardStatusReview    CardStatus = "review"    // graduated into regular review
	CardStatusSuspended CardStatus = "suspended" // excluded from study, set explicitly
)

// IsValid reports whether the status is one of the defined values.
func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusNew, CardStatusLearning, CardStatusReview, CardStatusSuspended:
		return true
	default:
		return false
	}
}

// CardPayload carries the user-visible fields of a card that exist before
// the card is persisted and given an identity. Conversion adapters produce
// payloads; the storage layer turns them into full Flashcards.
type CardPayload struct {
	DeckID       uuid.UUID
	Front        string
	Back         string
	FrontReading string
	BackReading  string
	Notes        string
	Tags         []string
	Source       CardSource
	State        SchedulingState
}

// Flashcard is a single study item belonging to one deck. Front holds the
// term (typically Japanese), back the meaning; the optional readings carry
// furigana for whichever side contains Japanese text.
type Flashcard struct {
	ID           uuid.UUID       `json:"id"`
	DeckID       uuid.UUID       `json:"deck_id"`
	Front        string          `json:"front"`
	Back         string          `json:"back"`
	FrontReading string          `json:"front_reading,omitempty"`
	BackReading  string          `json:"back_reading,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Tags         []string        `json:"tags"`
	Source       CardSource      `json:"-"`
	State        SchedulingState `json:"state"`
	Status       CardStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewCard creates a Flashcard from a payload, generating its identity,
// stamping timestamps with now, and deriving its status from the payload's
// scheduling state using the given classifier (normally srs.DetermineStatus;
// injected here to keep the dependency pointing from srs to domain).
// Returns an error if validation fails.
func NewCard(
	payload CardPayload,
	determineStatus func(SchedulingState) CardStatus,
	now time.Time,
) (*Flashcard, error) {
	source := payload.Source
	if source == nil {
		source = CustomSource{}
	}

	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}

	card := &Flashcard{
		ID:           uuid.New(),
		DeckID:       payload.DeckID,
		Front:        payload.Front,
		Back:         payload.Back,
		FrontReading: payload.FrontReading,
		BackReading:  payload.BackReading,
		Notes:        payload.Notes,
		Tags:         tags,
		Source:       source,
		State:        payload.State,
		Status:       determineStatus(payload.State),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}

	return c.State.Validate()
}

// WithState returns a copy of the card carrying the new scheduling state
// and derived status, with UpdatedAt stamped to now. The original card is
// not modified.
func (c *Flashcard) WithState(state SchedulingState, status CardStatus, now time.Time) *Flashcard {
	updated := *c
	updated.State = state
	updated.Status = status
	updated.UpdatedAt = now
	return &updated
}

// WithDeck returns a copy of the card moved to another deck.
func (c *Flashcard) WithDeck(deckID uuid.UUID, now time.Time) *Flashcard {
	updated := *c
	updated.DeckID = deckID
	updated.UpdatedAt = now
	return &updated
}

// WithSuspended returns a copy of the card with suspension toggled. When
// unsuspending, the status is re-derived from the scheduling state by the
// given classifier.
func (c *Flashcard) WithSuspended(
	suspended bool,
	determineStatus func(SchedulingState) CardStatus,
	now time.Time,
) *Flashcard {
	updated := *c
	if suspended {
		updated.Status = CardStatusSuspended
	} else {
		updated.Status = determineStatus(c.State)
	}
	updated.UpdatedAt = now
	return &updated
}

// IsSuspended reports whether the card is excluded from study.
func (c *Flashcard) IsSuspended() bool {
	return c.Status == CardStatusSuspended
}
