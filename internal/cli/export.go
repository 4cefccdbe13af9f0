package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/importexport"
)

var exportCmd = &cobra.Command{
	Use:   "export <deck>",
	Short: "Export a deck to a JSON or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		deck, err := a.deckByName(ctx, args[0])
		if err != nil {
			return err
		}
		cards, err := a.svc.ListCards(ctx, deck.ID)
		if err != nil {
			return err
		}

		asCSV, _ := cmd.Flags().GetBool("csv")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			ext := "json"
			if asCSV {
				ext = "csv"
			}
			output = fmt.Sprintf("%s.%s", slugify(deck.Name), ext)
		}

		var payload []byte
		if asCSV {
			payload, err = importexport.ExportCSV(cards)
			if err != nil {
				return err
			}
		} else {
			var reviews []*domain.ReviewLog
			if includeReviews, _ := cmd.Flags().GetBool("include-reviews"); includeReviews {
				reviews, err = a.reviews.GetByDeck(ctx, deck.ID)
				if err != nil {
					return err
				}
			}
			data := importexport.ExportDeck(deck, cards, reviews, timeNow())
			pretty, _ := cmd.Flags().GetBool("pretty")
			payload, err = importexport.ToJSON(data, pretty)
			if err != nil {
				return err
			}
		}

		if output == "-" {
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		}
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards to %s\n", len(cards), output)
		return nil
	},
}

// slugify turns a deck name into a safe file name stem.
func slugify(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, name)

	// "N5 - Kanji" maps to "n5---kanji"; collapse the runs.
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	mapped = strings.Trim(mapped, "-")
	if mapped == "" {
		return "deck"
	}
	return mapped
}

func init() {
	exportCmd.Flags().String("output", "", `output file ("-" for stdout; default: derived from the deck name)`)
	exportCmd.Flags().Bool("csv", false, "export cards as CSV instead of the JSON envelope")
	exportCmd.Flags().Bool("include-reviews", false, "include the review history in the JSON export")
	exportCmd.Flags().Bool("pretty", true, "indent the JSON output")

	rootCmd.AddCommand(exportCmd)
}
