// Package convert turns vocabulary and kanji study material into card
// payloads ready for persistence. Adapters here never touch storage; they
// produce domain.CardPayload values and leave identity and timestamps to
// the caller.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/hakusan/kioku/internal/domain"
)

// WordDefinition is one entry from a vocabulary unit list.
type WordDefinition struct {
	Word    string `json:"word"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning"`
	Type    string `json:"type,omitempty"` // part of speech
	Note    string `json:"note,omitempty"`
}

// KanjiData is one entry from a kanji level list.
type KanjiData struct {
	Word     string   `json:"word"`
	Meaning  string   `json:"meaning"`
	Kunyomi  []string `json:"kunyomi"`
	Onyomi   []string `json:"onyomi"`
	Radicals string   `json:"radicals,omitempty"`
}

// VocabToCard builds a card payload from a vocabulary entry. The front is
// the Japanese word with its reading, the back is the meaning; part of
// speech and note merge into the notes field.
func VocabToCard(word WordDefinition, deckID uuid.UUID, level, unit string, now time.Time) domain.CardPayload {
	var noteParts []string
	if word.Type != "" {
		noteParts = append(noteParts, word.Type)
	}
	if word.Note != "" {
		noteParts = append(noteParts, word.Note)
	}

	return domain.CardPayload{
		DeckID:       deckID,
		Front:        word.Word,
		Back:         word.Meaning,
		FrontReading: word.Reading,
		Notes:        strings.Join(noteParts, " | "),
		Tags:         []string{level, unit},
		Source:       domain.VocabSource{Level: level, Unit: unit, Word: word.Word},
		State:        domain.NewSchedulingState(now),
	}
}

// KanjiToCard builds a card payload from a kanji entry. The back stacks the
// meaning and the readings, one line each.
func KanjiToCard(kanji KanjiData, deckID uuid.UUID, level string, now time.Time) domain.CardPayload {
	backParts := []string{kanji.Meaning}
	if len(kanji.Onyomi) > 0 {
		backParts = append(backParts, "Onyomi: "+strings.Join(kanji.Onyomi, ", "))
	}
	if len(kanji.Kunyomi) > 0 {
		backParts = append(backParts, "Kunyomi: "+strings.Join(kanji.Kunyomi, ", "))
	}

	var notes string
	if kanji.Radicals != "" {
		notes = "Radicals: " + kanji.Radicals
	}

	return domain.CardPayload{
		DeckID: deckID,
		Front:  kanji.Word,
		Back:   strings.Join(backParts, "\n"),
		Notes:  notes,
		Tags:   []string{level, "kanji"},
		Source: domain.KanjiSource{Level: level, Kanji: kanji.Word},
		State:  domain.NewSchedulingState(now),
	}
}

// VocabListToCards converts a whole unit's vocabulary list.
func VocabListToCards(words []WordDefinition, deckID uuid.UUID, level, unit string, now time.Time) []domain.CardPayload {
	return lo.Map(words, func(w WordDefinition, _ int) domain.CardPayload {
		return VocabToCard(w, deckID, level, unit, now)
	})
}

// KanjiListToCards converts a whole level's kanji list.
func KanjiListToCards(kanjiList []KanjiData, deckID uuid.UUID, level string, now time.Time) []domain.CardPayload {
	return lo.Map(kanjiList, func(k KanjiData, _ int) domain.CardPayload {
		return KanjiToCard(k, deckID, level, now)
	})
}

// IsVocabInDeck reports whether a vocabulary entry already exists among the
// cards, matched by its source level, unit and word.
func IsVocabInDeck(cards []*domain.Flashcard, word WordDefinition, level, unit string) bool {
	return lo.SomeBy(cards, func(c *domain.Flashcard) bool {
		src, ok := c.Source.(domain.VocabSource)
		return ok && src.Level == level && src.Unit == unit && src.Word == word.Word
	})
}

// IsKanjiInDeck reports whether a kanji entry already exists among the
// cards, matched by its source level and character.
func IsKanjiInDeck(cards []*domain.Flashcard, kanji KanjiData, level string) bool {
	return lo.SomeBy(cards, func(c *domain.Flashcard) bool {
		src, ok := c.Source.(domain.KanjiSource)
		return ok && src.Level == level && src.Kanji == kanji.Word
	})
}

// FilterNewVocab drops vocabulary entries already present in the deck.
func FilterNewVocab(words []WordDefinition, existing []*domain.Flashcard, level, unit string) []WordDefinition {
	return lo.Filter(words, func(w WordDefinition, _ int) bool {
		return !IsVocabInDeck(existing, w, level, unit)
	})
}

// FilterNewKanji drops kanji entries already present in the deck.
func FilterNewKanji(kanjiList []KanjiData, existing []*domain.Flashcard, level string) []KanjiData {
	return lo.Filter(kanjiList, func(k KanjiData, _ int) bool {
		return !IsKanjiInDeck(existing, k, level)
	})
}

// SuggestVocabDeckName proposes a deck name for a vocabulary selection,
// "N5 - Unit 3" style, or "N5 - All Vocabulary" for the full level.
func SuggestVocabDeckName(level, unit string) string {
	levelUpper := strings.ToUpper(level)
	if unit == "all" {
		return fmt.Sprintf("%s - All Vocabulary", levelUpper)
	}
	return fmt.Sprintf("%s - Unit %s", levelUpper, strings.TrimPrefix(unit, "u"))
}

// SuggestKanjiDeckName proposes a deck name for a level's kanji list.
func SuggestKanjiDeckName(level string) string {
	return strings.ToUpper(level) + " - Kanji"
}
