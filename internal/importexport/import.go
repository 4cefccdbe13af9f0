package importexport

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
)

// DeckConflictPolicy says what to do when the imported deck's name collides
// with an existing deck.
type DeckConflictPolicy string

// Deck name conflict policies.
const (
	DeckConflictSkip    DeckConflictPolicy = "skip"
	DeckConflictRename  DeckConflictPolicy = "rename"
	DeckConflictReplace DeckConflictPolicy = "replace"
)

// DuplicatePolicy says what to do when an imported card's front and back
// match an existing card in the target deck.
type DuplicatePolicy string

// Card duplicate policies.
const (
	DuplicateSkip     DuplicatePolicy = "skip"
	DuplicateReplace  DuplicatePolicy = "replace"
	DuplicateKeepBoth DuplicatePolicy = "keep-both"
)

// DeckAction is the resolution PrepareImportDeck arrived at.
type DeckAction string

// Possible deck resolutions.
const (
	DeckActionCreate  DeckAction = "create"
	DeckActionSkip    DeckAction = "skip"
	DeckActionReplace DeckAction = "replace"
)

// ImportOptions bundles the caller's conflict policies.
type ImportOptions struct {
	DeckNameConflict      DeckConflictPolicy
	CardDuplicateStrategy DuplicatePolicy
	IncludeReviews        bool
}

// ValidationResult carries the outcome of structural validation. Errors
// block the import entirely; warnings let it proceed degraded.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateImportData runs the structural checks over loosely-parsed JSON:
// version present and a string, deck present with a non-empty string name,
// cards a list whose members all carry non-empty front and back. A reviews
// field that is not a list is a warning, not an error.
func ValidateImportData(raw any) ValidationResult {
	var errs, warnings []string

	obj, ok := raw.(map[string]any)
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{"invalid JSON structure"}}
	}

	switch version := obj["version"].(type) {
	case nil:
		errs = append(errs, "missing version field")
	case string:
		if version == "" {
			errs = append(errs, "missing version field")
		}
	default:
		errs = append(errs, "invalid version field")
	}

	if deck, ok := obj["deck"].(map[string]any); !ok {
		errs = append(errs, "missing deck field")
	} else if name, ok := deck["name"].(string); !ok || name == "" {
		errs = append(errs, "deck must have a name")
	}

	if cards, ok := obj["cards"].([]any); !ok {
		errs = append(errs, "cards must be an array")
	} else {
		for i, item := range cards {
			card, ok := item.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("card %d: not an object", i+1))
				continue
			}
			if front, ok := card["front"].(string); !ok || front == "" {
				errs = append(errs, fmt.Sprintf("card %d: missing or invalid front", i+1))
			}
			if back, ok := card["back"].(string); !ok || back == "" {
				errs = append(errs, fmt.Sprintf("card %d: missing or invalid back", i+1))
			}
		}
	}

	if reviews, present := obj["reviews"]; present && reviews != nil {
		if _, ok := reviews.([]any); !ok {
			warnings = append(warnings, "reviews field is not a list, will be ignored")
		}
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
	}
	return ValidationResult{Valid: true, Warnings: warnings}
}

// ParseImportJSON decodes and validates an export envelope. The returned
// error wraps domain.ErrValidation when the structure is unacceptable; the
// validation result is returned alongside so callers can show warnings even
// on success.
func ParseImportJSON(data []byte) (*ExportData, ValidationResult, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		result := ValidationResult{Valid: false, Errors: []string{"invalid JSON format"}}
		return nil, result, fmt.Errorf("%w: invalid JSON format", domain.ErrValidation)
	}

	result := ValidateImportData(raw)
	if !result.Valid {
		return nil, result, fmt.Errorf(
			"%w: %s", domain.ErrValidation, strings.Join(result.Errors, "; "),
		)
	}

	// Reviews stay raw through the typed decode: a malformed reviews field
	// was downgraded to a warning above and must not sink the whole parse.
	var envelope struct {
		Version    string              `json:"version"`
		ExportedAt time.Time           `json:"exported_at"`
		Deck       *domain.Deck        `json:"deck"`
		Cards      []*domain.Flashcard `json:"cards"`
		Reviews    json.RawMessage     `json:"reviews"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		result = ValidationResult{Valid: false, Errors: []string{"invalid JSON structure"}}
		return nil, result, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parsed := ExportData{
		Version:    envelope.Version,
		ExportedAt: envelope.ExportedAt,
		Deck:       envelope.Deck,
		Cards:      envelope.Cards,
	}
	if len(result.Warnings) == 0 && len(envelope.Reviews) > 0 {
		if err := json.Unmarshal(envelope.Reviews, &parsed.Reviews); err != nil {
			result = ValidationResult{Valid: false, Errors: []string{"invalid JSON structure"}}
			return nil, result, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	return &parsed, result, nil
}

// PrepareImportDeck resolves the imported deck against the existing decks.
// With no name collision a fresh deck is created; otherwise the options
// decide: skip returns a nil deck, replace reuses the existing deck's
// identity, rename appends " (n)" suffixes until the name is unique.
func PrepareImportDeck(
	data *ExportData,
	existingDecks []*domain.Deck,
	opts ImportOptions,
	now time.Time,
) (*domain.Deck, DeckAction, error) {
	imported := data.Deck

	settings := imported.Settings
	if settings == (domain.DeckSettings{}) {
		settings = domain.DefaultDeckSettings()
	}

	existing, found := lo.Find(existingDecks, func(d *domain.Deck) bool {
		return strings.EqualFold(d.Name, imported.Name)
	})

	if found {
		switch opts.DeckNameConflict {
		case DeckConflictSkip:
			return nil, DeckActionSkip, nil

		case DeckConflictReplace:
			deck := *imported
			deck.ID = existing.ID
			deck.Settings = settings
			deck.UpdatedAt = now
			if deck.CreatedAt.IsZero() {
				deck.CreatedAt = now
			}
			if err := deck.Validate(); err != nil {
				return nil, "", err
			}
			return &deck, DeckActionReplace, nil

		case DeckConflictRename:
			name := imported.Name
			for suffix := 1; nameTaken(existingDecks, name); suffix++ {
				name = fmt.Sprintf("%s (%d)", imported.Name, suffix)
			}
			deck, err := domain.NewDeck(name, imported.Description, settings, now)
			if err != nil {
				return nil, "", err
			}
			return deck, DeckActionCreate, nil

		default:
			return nil, "", fmt.Errorf(
				"%w: unknown deck conflict policy %q", domain.ErrValidation, opts.DeckNameConflict,
			)
		}
	}

	deck, err := domain.NewDeck(imported.Name, imported.Description, settings, now)
	if err != nil {
		return nil, "", err
	}
	return deck, DeckActionCreate, nil
}

// CardImportPlan is the outcome of card conflict resolution: the cards to
// persist, how many imported entries were skipped as duplicates, and the
// mapping from imported card identities to prepared ones (needed to re-key
// review history).
type CardImportPlan struct {
	Cards   []*domain.Flashcard
	Skipped int
	IDMap   map[uuid.UUID]uuid.UUID
}

// PrepareImportCards resolves imported cards against the target deck's
// existing cards. Duplicates are detected by identical front and back; the
// options decide whether a duplicate is skipped, replaces the existing card
// (keeping its identity), or is kept alongside it under a new identity.
// Cards imported without scheduling state start over as new cards.
func PrepareImportCards(
	data *ExportData,
	targetDeckID uuid.UUID,
	existingCards []*domain.Flashcard,
	opts ImportOptions,
	now time.Time,
) (*CardImportPlan, error) {
	plan := &CardImportPlan{IDMap: make(map[uuid.UUID]uuid.UUID, len(data.Cards))}

	for _, imported := range data.Cards {
		duplicate, found := lo.Find(existingCards, func(c *domain.Flashcard) bool {
			return c.Front == imported.Front && c.Back == imported.Back
		})

		if found {
			switch opts.CardDuplicateStrategy {
			case DuplicateSkip:
				plan.Skipped++
				continue

			case DuplicateReplace:
				card, err := importedCard(imported, targetDeckID, now)
				if err != nil {
					return nil, err
				}
				card.ID = duplicate.ID
				plan.add(imported.ID, card)
				continue

			case DuplicateKeepBoth:
				// Falls through to the fresh-card path below.

			default:
				return nil, fmt.Errorf(
					"%w: unknown card duplicate strategy %q",
					domain.ErrValidation, opts.CardDuplicateStrategy,
				)
			}
		}

		card, err := importedCard(imported, targetDeckID, now)
		if err != nil {
			return nil, err
		}
		plan.add(imported.ID, card)
	}

	return plan, nil
}

func (p *CardImportPlan) add(importedID uuid.UUID, card *domain.Flashcard) {
	p.Cards = append(p.Cards, card)
	if importedID != uuid.Nil {
		p.IDMap[importedID] = card.ID
	}
}

// PrepareImportReviews re-keys imported review history onto the prepared
// cards: each log gets a fresh identity, its card reference mapped through
// the plan and its deck reference pointed at the target deck. Logs for
// cards that were skipped (or absent from the import) are dropped.
func PrepareImportReviews(
	reviews []*domain.ReviewLog,
	plan *CardImportPlan,
	targetDeckID uuid.UUID,
) []*domain.ReviewLog {
	var prepared []*domain.ReviewLog
	for _, imported := range reviews {
		cardID, ok := plan.IDMap[imported.CardID]
		if !ok {
			continue
		}
		log := *imported
		log.ID = uuid.New()
		log.CardID = cardID
		log.DeckID = targetDeckID
		prepared = append(prepared, &log)
	}
	return prepared
}

// importedCard builds a card for the target deck from an imported record.
// The source is always reset to imported; an absent scheduling state (its
// zero value, since no valid state has a zero ease factor) gets a fresh one.
func importedCard(imported *domain.Flashcard, targetDeckID uuid.UUID, now time.Time) (*domain.Flashcard, error) {
	state := imported.State
	if state.EaseFactor == 0 {
		state = domain.NewSchedulingState(now)
	}

	createdAt := imported.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	card := &domain.Flashcard{
		ID:           uuid.New(),
		DeckID:       targetDeckID,
		Front:        imported.Front,
		Back:         imported.Back,
		FrontReading: imported.FrontReading,
		BackReading:  imported.BackReading,
		Notes:        imported.Notes,
		Tags:         imported.Tags,
		Source:       domain.ImportedSource{},
		State:        state,
		Status:       srs.DetermineStatus(state),
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

func nameTaken(decks []*domain.Deck, name string) bool {
	return lo.SomeBy(decks, func(d *domain.Deck) bool {
		return strings.EqualFold(d.Name, name)
	})
}
