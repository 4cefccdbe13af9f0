package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors.
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck name is empty or blank.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrNegativeDailyLimit is returned when a per-day card limit is negative.
	ErrNegativeDailyLimit = errors.New("per-day card limits cannot be negative")
)

// CardDirection controls which side of a card is shown first during review.
type CardDirection string

// Possible direction values.
const (
	// DirectionTermFirst shows the term (front) and asks for the meaning.
	DirectionTermFirst CardDirection = "term-first"

	// DirectionMeaningFirst shows the meaning (back) and asks for the term.
	DirectionMeaningFirst CardDirection = "meaning-first"

	// DirectionRandom picks one of the two fixed directions per card shown.
	DirectionRandom CardDirection = "random"
)

// IsValid reports whether the direction is one of the defined values.
func (d CardDirection) IsValid() bool {
	switch d {
	case DirectionTermFirst, DirectionMeaningFirst, DirectionRandom:
		return true
	default:
		return false
	}
}

// DeckSettings holds per-deck study configuration.
type DeckSettings struct {
	NewCardsPerDay   int           `json:"new_cards_per_day"`
	ReviewsPerDay    int           `json:"reviews_per_day"` // 0 = unlimited
	DefaultDirection CardDirection `json:"default_direction"`
}

// DefaultDeckSettings returns the settings applied to decks created without
// explicit configuration.
func DefaultDeckSettings() DeckSettings {
	return DeckSettings{
		NewCardsPerDay:   20,
		ReviewsPerDay:    200,
		DefaultDirection: DirectionMeaningFirst,
	}
}

// Deck groups flashcards for study. Deck names are unique among all decks,
// compared case-insensitively; the storage layer enforces the uniqueness.
type Deck struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Settings    DeckSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewDeck creates a deck with the given name, description and settings,
// stamping both timestamps with now. Returns an error if validation fails.
func NewDeck(name, description string, settings DeckSettings, now time.Time) (*Deck, error) {
	deck := &Deck{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}

	if d.Settings.NewCardsPerDay < 0 || d.Settings.ReviewsPerDay < 0 {
		return ErrNegativeDailyLimit
	}

	if !d.Settings.DefaultDirection.IsValid() {
		return ErrInvalidDirection
	}

	return nil
}

// WithUpdates returns a copy of the deck with the given name, description
// and settings applied and UpdatedAt stamped with now. The original deck is
// not modified.
func (d *Deck) WithUpdates(name, description string, settings DeckSettings, now time.Time) *Deck {
	updated := *d
	updated.Name = name
	updated.Description = description
	updated.Settings = settings
	updated.UpdatedAt = now
	return &updated
}
