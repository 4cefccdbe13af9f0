package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/convert"
	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/store"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert vocabulary and kanji lists into flashcards",
}

var convertVocabCmd = &cobra.Command{
	Use:   "vocab <dir>",
	Short: "Convert vocabulary unit files into a deck",
	Long: `Reads unit files (u1.json, u2.json, ...) from a level directory and
converts the selected units into cards. Units are chosen with --units:
"all", a single unit "u3", a range "u3-u8", or combinations "u1-u3,u5".
Words already converted into the target deck are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		unitsFlag, _ := cmd.Flags().GetString("units")

		selector, err := convert.ParseUnitSelector(unitsFlag)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		deckName, _ := cmd.Flags().GetString("deck")
		if deckName == "" {
			deckName = convert.SuggestVocabDeckName(level, unitsFlag)
		}
		deck, err := ensureDeck(cmd, a, deckName)
		if err != nil {
			return err
		}
		existing, err := a.svc.ListCards(ctx, deck.ID)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		now := timeNow()
		var payloads []domain.CardPayload
		matched := false
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			unit := strings.TrimSuffix(name, ".json")
			if !selector.Matches(unit) {
				continue
			}
			matched = true

			raw, err := os.ReadFile(filepath.Join(args[0], name))
			if err != nil {
				return err
			}
			var words []convert.WordDefinition
			if err := json.Unmarshal(raw, &words); err != nil {
				return fmt.Errorf("failed to parse %s: %w", name, err)
			}

			fresh := convert.FilterNewVocab(words, existing, level, unit)
			payloads = append(payloads, convert.VocabListToCards(fresh, deck.ID, level, unit, now)...)
		}
		if !matched {
			return fmt.Errorf("no unit files in %s match %q", args[0], unitsFlag)
		}

		return createConverted(cmd, a, deck, payloads)
	},
}

var convertKanjiCmd = &cobra.Command{
	Use:   "kanji <file>",
	Short: "Convert a kanji level file into a deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		deckName, _ := cmd.Flags().GetString("deck")
		if deckName == "" {
			deckName = convert.SuggestKanjiDeckName(level)
		}
		deck, err := ensureDeck(cmd, a, deckName)
		if err != nil {
			return err
		}
		existing, err := a.svc.ListCards(ctx, deck.ID)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		var kanjiList []convert.KanjiData
		if err := json.Unmarshal(raw, &kanjiList); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		fresh := convert.FilterNewKanji(kanjiList, existing, level)
		payloads := convert.KanjiListToCards(fresh, deck.ID, level, timeNow())

		return createConverted(cmd, a, deck, payloads)
	},
}

// ensureDeck fetches the named deck or creates it with the configured
// defaults.
func ensureDeck(cmd *cobra.Command, a *app, name string) (*domain.Deck, error) {
	deck, err := a.svc.GetDeckByName(cmd.Context(), name)
	if err == nil {
		return deck, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	settings := domain.DeckSettings{
		NewCardsPerDay:   a.cfg.Deck.NewCardsPerDay,
		ReviewsPerDay:    a.cfg.Deck.ReviewsPerDay,
		DefaultDirection: domain.CardDirection(a.cfg.Deck.DefaultDirection),
	}
	deck, err = a.svc.CreateDeck(cmd.Context(), name, "", &settings)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created deck %q\n", deck.Name)
	return deck, nil
}

func createConverted(cmd *cobra.Command, a *app, deck *domain.Deck, payloads []domain.CardPayload) error {
	if len(payloads) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to convert; every entry is already in the deck.")
		return nil
	}

	cards, err := a.svc.CreateCards(cmd.Context(), payloads)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %d cards to %q\n", len(cards), deck.Name)
	return nil
}

func init() {
	convertVocabCmd.Flags().String("level", "n5", "JLPT level tag (n5..n1)")
	convertVocabCmd.Flags().String("units", "all", `unit selector: "all", "u3", "u3-u8" or "u1-u3,u5"`)
	convertVocabCmd.Flags().String("deck", "", "target deck (default: suggested from level and units)")

	convertKanjiCmd.Flags().String("level", "n5", "JLPT level tag (n5..n1)")
	convertKanjiCmd.Flags().String("deck", "", "target deck (default: suggested from the level)")

	convertCmd.AddCommand(convertVocabCmd, convertKanjiCmd)
	rootCmd.AddCommand(convertCmd)
}
