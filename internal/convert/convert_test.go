package convert_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakusan/kioku/internal/convert"
	"github.com/hakusan/kioku/internal/domain"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestVocabToCard(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()
	word := convert.WordDefinition{
		Word:    "食べる",
		Reading: "たべる",
		Meaning: "to eat",
		Type:    "verb",
		Note:    "ichidan",
	}

	payload := convert.VocabToCard(word, deckID, "n5", "u3", testNow)

	assert.Equal(t, deckID, payload.DeckID)
	assert.Equal(t, "食べる", payload.Front)
	assert.Equal(t, "to eat", payload.Back)
	assert.Equal(t, "たべる", payload.FrontReading)
	assert.Equal(t, "verb | ichidan", payload.Notes)
	assert.Equal(t, []string{"n5", "u3"}, payload.Tags)
	assert.Equal(t, domain.VocabSource{Level: "n5", Unit: "u3", Word: "食べる"}, payload.Source)
	assert.True(t, payload.State.DueAt.Equal(testNow), "new cards are due immediately")
}

func TestVocabToCard_NotesOmittedWhenEmpty(t *testing.T) {
	t.Parallel()

	word := convert.WordDefinition{Word: "犬", Meaning: "dog"}
	payload := convert.VocabToCard(word, uuid.New(), "n5", "u1", testNow)
	assert.Empty(t, payload.Notes)
}

func TestKanjiToCard(t *testing.T) {
	t.Parallel()

	kanji := convert.KanjiData{
		Word:     "日",
		Meaning:  "sun, day",
		Kunyomi:  []string{"ひ", "か"},
		Onyomi:   []string{"ニチ", "ジツ"},
		Radicals: "日",
	}

	payload := convert.KanjiToCard(kanji, uuid.New(), "n5", testNow)

	assert.Equal(t, "日", payload.Front)
	assert.Equal(t, "sun, day\nOnyomi: ニチ, ジツ\nKunyomi: ひ, か", payload.Back)
	assert.Equal(t, "Radicals: 日", payload.Notes)
	assert.Equal(t, []string{"n5", "kanji"}, payload.Tags)
	assert.Equal(t, domain.KanjiSource{Level: "n5", Kanji: "日"}, payload.Source)
}

func TestKanjiToCard_ReadingLinesOptional(t *testing.T) {
	t.Parallel()

	kanji := convert.KanjiData{Word: "凸", Meaning: "convex"}
	payload := convert.KanjiToCard(kanji, uuid.New(), "n1", testNow)
	assert.Equal(t, "convex", payload.Back, "no reading lines when readings are empty")
	assert.Empty(t, payload.Notes)
}

func TestBatchConversions(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()
	words := []convert.WordDefinition{
		{Word: "犬", Meaning: "dog"},
		{Word: "猫", Meaning: "cat"},
	}

	payloads := convert.VocabListToCards(words, deckID, "n5", "u1", testNow)
	require.Len(t, payloads, 2)
	assert.Equal(t, "犬", payloads[0].Front)
	assert.Equal(t, "猫", payloads[1].Front)

	kanjiList := []convert.KanjiData{{Word: "水", Meaning: "water"}}
	kanjiPayloads := convert.KanjiListToCards(kanjiList, deckID, "n5", testNow)
	require.Len(t, kanjiPayloads, 1)
	assert.Equal(t, "水", kanjiPayloads[0].Front)
}

func cardWithSource(source domain.CardSource) *domain.Flashcard {
	return &domain.Flashcard{
		ID:     uuid.New(),
		DeckID: uuid.New(),
		Front:  "front",
		Back:   "back",
		Source: source,
		State:  domain.NewSchedulingState(testNow),
		Status: domain.CardStatusNew,
	}
}

func TestFilterNewVocab(t *testing.T) {
	t.Parallel()

	existing := []*domain.Flashcard{
		cardWithSource(domain.VocabSource{Level: "n5", Unit: "u1", Word: "犬"}),
		cardWithSource(domain.VocabSource{Level: "n4", Unit: "u1", Word: "猫"}),
		cardWithSource(domain.CustomSource{}),
	}

	words := []convert.WordDefinition{
		{Word: "犬", Meaning: "dog"},
		{Word: "猫", Meaning: "cat"},
	}

	fresh := convert.FilterNewVocab(words, existing, "n5", "u1")
	require.Len(t, fresh, 1)
	assert.Equal(t, "猫", fresh[0].Word, "same word from another level is not a duplicate")
}

func TestFilterNewKanji(t *testing.T) {
	t.Parallel()

	existing := []*domain.Flashcard{
		cardWithSource(domain.KanjiSource{Level: "n5", Kanji: "日"}),
	}

	kanjiList := []convert.KanjiData{
		{Word: "日", Meaning: "sun"},
		{Word: "月", Meaning: "moon"},
	}

	fresh := convert.FilterNewKanji(kanjiList, existing, "n5")
	require.Len(t, fresh, 1)
	assert.Equal(t, "月", fresh[0].Word)
}

func TestSuggestedDeckNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "N5 - Unit 3", convert.SuggestVocabDeckName("n5", "u3"))
	assert.Equal(t, "N5 - All Vocabulary", convert.SuggestVocabDeckName("n5", "all"))
	assert.Equal(t, "N4 - Kanji", convert.SuggestKanjiDeckName("n4"))
}

func TestParseUnitSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		wantAll   bool
		wantUnits []int
		wantErr   bool
	}{
		{input: "all", wantAll: true},
		{input: "u1", wantUnits: []int{1}},
		{input: "u3-u8", wantUnits: []int{3, 4, 5, 6, 7, 8}},
		{input: "u1-u3,u5,u8-u10", wantUnits: []int{1, 2, 3, 5, 8, 9, 10}},
		{input: "u2,u1-u3", wantUnits: []int{1, 2, 3}},
		{input: "", wantErr: true},
		{input: "unit1", wantErr: true},
		{input: "u1,", wantErr: true},
		{input: "u5-u3", wantErr: true},
		{input: "all,u1", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			selector, err := convert.ParseUnitSelector(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, convert.ErrInvalidUnitSelector)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAll, selector.All)
			assert.Equal(t, tt.wantUnits, selector.Units)
		})
	}
}

func TestUnitSelector_Matches(t *testing.T) {
	t.Parallel()

	all, err := convert.ParseUnitSelector("all")
	require.NoError(t, err)
	assert.True(t, all.Matches("u7"))

	some, err := convert.ParseUnitSelector("u1-u3")
	require.NoError(t, err)
	assert.True(t, some.Matches("u2"))
	assert.False(t, some.Matches("u4"))
	assert.False(t, some.Matches("bogus"))

	assert.Equal(t, []string{"u1", "u2", "u3"}, some.UnitNames())
}
