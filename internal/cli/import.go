package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/importexport"
	"github.com/hakusan/kioku/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a deck from a JSON export file",
	Long: `Reads a JSON export envelope and recreates its deck and cards.
When the deck name collides with an existing deck, --on-conflict decides
whether to skip the import, rename the incoming deck, or replace the
existing one. Cards matching an existing card's front and back are handled
per --duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		data, result, err := importexport.ParseImportJSON(raw)
		if err != nil {
			for _, msg := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", msg)
			}
			return err
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
		}

		onConflict, _ := cmd.Flags().GetString("on-conflict")
		duplicates, _ := cmd.Flags().GetString("duplicates")
		includeReviews, _ := cmd.Flags().GetBool("include-reviews")
		opts := importexport.ImportOptions{
			DeckNameConflict:      importexport.DeckConflictPolicy(onConflict),
			CardDuplicateStrategy: importexport.DuplicatePolicy(duplicates),
			IncludeReviews:        includeReviews,
		}

		now := timeNow()

		existingDecks, err := a.svc.ListDecks(ctx)
		if err != nil {
			return err
		}
		deck, action, err := importexport.PrepareImportDeck(data, existingDecks, opts, now)
		if err != nil {
			return err
		}
		if action == importexport.DeckActionSkip {
			fmt.Fprintf(cmd.OutOrStdout(), "Deck %q already exists, import skipped.\n", data.Deck.Name)
			return nil
		}

		current, err := a.svc.ListCards(ctx, deck.ID)
		if err != nil {
			return err
		}

		plan, err := importexport.PrepareImportCards(data, deck.ID, current, opts, now)
		if err != nil {
			return err
		}

		reviewCount := 0
		err = store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
			decks := a.decks.WithTx(tx)
			cards := a.cards.WithTx(tx)
			reviewStore := a.reviews.WithTx(tx)

			switch action {
			case importexport.DeckActionCreate:
				if err := decks.Create(ctx, deck); err != nil {
					return err
				}
			case importexport.DeckActionReplace:
				if err := decks.Update(ctx, deck); err != nil {
					return err
				}
			}

			existingIDs := make(map[string]bool, len(current))
			for _, c := range current {
				existingIDs[c.ID.String()] = true
			}
			for _, card := range plan.Cards {
				if existingIDs[card.ID.String()] {
					if err := cards.Update(ctx, card); err != nil {
						return err
					}
				} else {
					if err := cards.Create(ctx, card); err != nil {
						return err
					}
				}
			}

			if opts.IncludeReviews {
				for _, log := range importexport.PrepareImportReviews(data.Reviews, plan, deck.ID) {
					if err := reviewStore.Create(ctx, log); err != nil {
						return err
					}
					reviewCount++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards into %q", len(plan.Cards), deck.Name)
		if plan.Skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d duplicates skipped)", plan.Skipped)
		}
		if reviewCount > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d review logs", reviewCount)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	importCmd.Flags().String("on-conflict", "rename", "deck name conflict policy: skip, rename or replace")
	importCmd.Flags().String("duplicates", "skip", "duplicate card policy: skip, replace or keep-both")
	importCmd.Flags().Bool("include-reviews", false, "also import the review history, when present")

	rootCmd.AddCommand(importCmd)
}
