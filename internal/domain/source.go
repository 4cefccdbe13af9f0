package domain

import (
	"encoding/json"
	"fmt"
)

// SourceType discriminates the CardSource variants.
type SourceType string

// Possible source type values.
const (
	SourceTypeVocab    SourceType = "vocab"
	SourceTypeKanji    SourceType = "kanji"
	SourceTypeCustom   SourceType = "custom"
	SourceTypeImported SourceType = "imported"
)

// CardSource identifies where a card came from. It is a closed sum type:
// the only implementations are VocabSource, KanjiSource, CustomSource and
// ImportedSource. Code that inspects a source should type-switch over all
// four variants.
//
// Key returns the variant's duplicate-detection discriminant: the vocabulary
// word for vocab sources, the kanji character for kanji sources, and the
// empty string for custom and imported sources (which carry no identity).
type CardSource interface {
	Type() SourceType
	Key() string

	// isCardSource keeps the set of implementations closed.
	isCardSource()
}

// VocabSource marks a card converted from a vocabulary unit entry.
type VocabSource struct {
	Level string `json:"level"`
	Unit  string `json:"unit"`
	Word  string `json:"word"`
}

// KanjiSource marks a card converted from a kanji list entry.
type KanjiSource struct {
	Level string `json:"level"`
	Kanji string `json:"kanji"`
}

// CustomSource marks a card created by hand.
type CustomSource struct{}

// ImportedSource marks a card brought in through deck import.
type ImportedSource struct{}

func (s VocabSource) Type() SourceType    { return SourceTypeVocab }
func (s VocabSource) Key() string         { return s.Word }
func (s VocabSource) isCardSource()       {}
func (s KanjiSource) Type() SourceType    { return SourceTypeKanji }
func (s KanjiSource) Key() string         { return s.Kanji }
func (s KanjiSource) isCardSource()       {}
func (s CustomSource) Type() SourceType   { return SourceTypeCustom }
func (s CustomSource) Key() string        { return "" }
func (s CustomSource) isCardSource()      {}
func (s ImportedSource) Type() SourceType { return SourceTypeImported }
func (s ImportedSource) Key() string      { return "" }
func (s ImportedSource) isCardSource()    {}

// sourceEnvelope is the wire representation of a CardSource: the variant
// tag plus the union of all variant fields.
type sourceEnvelope struct {
	Type  SourceType `json:"type"`
	Level string     `json:"level,omitempty"`
	Unit  string     `json:"unit,omitempty"`
	Word  string     `json:"word,omitempty"`
	Kanji string     `json:"kanji,omitempty"`
}

// MarshalCardSource encodes a source as a tagged JSON object.
func MarshalCardSource(s CardSource) ([]byte, error) {
	if s == nil {
		s = CustomSource{}
	}

	var env sourceEnvelope
	switch v := s.(type) {
	case VocabSource:
		env = sourceEnvelope{Type: SourceTypeVocab, Level: v.Level, Unit: v.Unit, Word: v.Word}
	case KanjiSource:
		env = sourceEnvelope{Type: SourceTypeKanji, Level: v.Level, Kanji: v.Kanji}
	case CustomSource:
		env = sourceEnvelope{Type: SourceTypeCustom}
	case ImportedSource:
		env = sourceEnvelope{Type: SourceTypeImported}
	default:
		return nil, fmt.Errorf("%w: unknown source variant %T", ErrInvalidSource, s)
	}

	return json.Marshal(env)
}

// UnmarshalCardSource decodes a tagged JSON object back into the matching
// CardSource variant. Returns ErrInvalidSource for unknown tags or variants
// missing their discriminant field.
func UnmarshalCardSource(data []byte) (CardSource, error) {
	var env sourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	switch env.Type {
	case SourceTypeVocab:
		if env.Word == "" {
			return nil, fmt.Errorf("%w: vocab source missing word", ErrInvalidSource)
		}
		return VocabSource{Level: env.Level, Unit: env.Unit, Word: env.Word}, nil
	case SourceTypeKanji:
		if env.Kanji == "" {
			return nil, fmt.Errorf("%w: kanji source missing kanji", ErrInvalidSource)
		}
		return KanjiSource{Level: env.Level, Kanji: env.Kanji}, nil
	case SourceTypeCustom:
		return CustomSource{}, nil
	case SourceTypeImported:
		return ImportedSource{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", ErrInvalidSource, env.Type)
	}
}
