package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/domain"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage individual cards",
}

var cardAddCmd = &cobra.Command{
	Use:   "add <front> <back>",
	Short: "Add a custom card to a deck",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		deckName, _ := cmd.Flags().GetString("deck")
		deck, err := a.deckByName(ctx, deckName)
		if err != nil {
			return err
		}

		frontReading, _ := cmd.Flags().GetString("front-reading")
		backReading, _ := cmd.Flags().GetString("back-reading")
		notes, _ := cmd.Flags().GetString("notes")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		card, err := a.svc.CreateCard(ctx, domain.CardPayload{
			DeckID:       deck.ID,
			Front:        args[0],
			Back:         args[1],
			FrontReading: frontReading,
			BackReading:  backReading,
			Notes:        notes,
			Tags:         tags,
			Source:       domain.CustomSource{},
			State:        domain.NewSchedulingState(timeNow()),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added card %s to %q\n", card.ID, deck.Name)
		return nil
	},
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a deck's cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		deckName, _ := cmd.Flags().GetString("deck")
		deck, err := a.deckByName(ctx, deckName)
		if err != nil {
			return err
		}

		cards, err := a.svc.ListCards(ctx, deck.ID)
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Deck is empty.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFRONT\tBACK\tSTATUS\tDUE")
		for _, card := range cards {
			due := card.State.DueAt.Format("2006-01-02")
			if card.Status == domain.CardStatusNew {
				due = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				card.ID, card.Front, card.Back, card.Status, due)
		}
		return w.Flush()
	},
}

var cardMoveCmd = &cobra.Command{
	Use:   "move <card-id> <deck>",
	Short: "Move a card into another deck",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		cardID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid card ID %q: %w", args[0], err)
		}
		deck, err := a.deckByName(ctx, args[1])
		if err != nil {
			return err
		}

		card, err := a.svc.MoveCard(ctx, cardID, deck.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %q to %q\n", card.Front, deck.Name)
		return nil
	},
}

var cardSuspendCmd = &cobra.Command{
	Use:   "suspend <card-id>",
	Short: "Exclude a card from study",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setSuspended(cmd, args[0], true) },
}

var cardUnsuspendCmd = &cobra.Command{
	Use:   "unsuspend <card-id>",
	Short: "Return a suspended card to study",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setSuspended(cmd, args[0], false) },
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete <card-id>",
	Short: "Delete a card and its review history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cardID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid card ID %q: %w", args[0], err)
		}
		if err := a.svc.DeleteCard(cmd.Context(), cardID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
		return nil
	},
}

func setSuspended(cmd *cobra.Command, rawID string, suspended bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cardID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid card ID %q: %w", rawID, err)
	}

	card, err := a.svc.SetCardSuspended(cmd.Context(), cardID, suspended)
	if err != nil {
		return err
	}

	if suspended {
		fmt.Fprintf(cmd.OutOrStdout(), "Suspended %q\n", card.Front)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Unsuspended %q (now %s)\n", card.Front, card.Status)
	}
	return nil
}

func init() {
	cardAddCmd.Flags().String("deck", "", "deck name (required)")
	cardAddCmd.Flags().String("front-reading", "", "reading for the front side")
	cardAddCmd.Flags().String("back-reading", "", "reading for the back side")
	cardAddCmd.Flags().String("notes", "", "free-form notes")
	cardAddCmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	_ = cardAddCmd.MarkFlagRequired("deck")

	cardListCmd.Flags().String("deck", "", "deck name (required)")
	_ = cardListCmd.MarkFlagRequired("deck")

	cardCmd.AddCommand(cardAddCmd, cardListCmd, cardMoveCmd, cardSuspendCmd, cardUnsuspendCmd, cardDeleteCmd)
	rootCmd.AddCommand(cardCmd)
}
