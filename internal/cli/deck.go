package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/stats"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage flashcard decks",
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all decks with their due counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		decks, err := a.svc.ListDecks(ctx)
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No decks yet. Create one with: kioku deck create <name>")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCARDS\tDUE\tDESCRIPTION")
		for _, deck := range decks {
			cards, err := a.svc.ListCards(ctx, deck.ID)
			if err != nil {
				return err
			}
			due, err := a.svc.CountDueCards(ctx, deck.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", deck.Name, len(cards), due, deck.Description)
		}
		return w.Flush()
	},
}

var deckCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		description, _ := cmd.Flags().GetString("description")

		settings := domain.DeckSettings{
			NewCardsPerDay:   a.cfg.Deck.NewCardsPerDay,
			ReviewsPerDay:    a.cfg.Deck.ReviewsPerDay,
			DefaultDirection: domain.CardDirection(a.cfg.Deck.DefaultDirection),
		}
		deck, err := a.svc.CreateDeck(cmd.Context(), args[0], description, &settings)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created deck %q (%s)\n", deck.Name, deck.ID)
		return nil
	},
}

var deckShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a deck's details and statistics",
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
		reviews, err := a.reviews.GetByDeck(ctx, deck.ID)
		if err != nil {
			return err
		}

		summary := stats.CalculateDeckStats(cards, reviews, timeNow())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", deck.Name)
		if deck.Description != "" {
			fmt.Fprintf(out, "%s\n", deck.Description)
		}
		fmt.Fprintf(out, "\nCards: %d total (%d new, %d learning, %d review, %d suspended)\n",
			summary.TotalCards, summary.NewCards, summary.LearningCards,
			summary.ReviewCards, summary.SuspendedCards)
		fmt.Fprintf(out, "Due: %d today, %d tomorrow\n", summary.DueToday, summary.DueTomorrow)
		fmt.Fprintf(out, "Average ease: %.2f   Retention (30d): %d%%\n",
			summary.AverageEaseFactor, summary.RetentionRate)
		fmt.Fprintf(out, "Streak: %d days (longest %d)\n", summary.CurrentStreak, summary.LongestStreak)
		fmt.Fprintf(out, "\nLimits: %d new/day, %d reviews/day, direction %s\n",
			deck.Settings.NewCardsPerDay, deck.Settings.ReviewsPerDay, deck.Settings.DefaultDirection)
		return nil
	},
}

var deckUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update a deck's name, description or limits",
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

		name := deck.Name
		if cmd.Flags().Changed("name") {
			name, _ = cmd.Flags().GetString("name")
		}
		description := deck.Description
		if cmd.Flags().Changed("description") {
			description, _ = cmd.Flags().GetString("description")
		}
		settings := deck.Settings
		if cmd.Flags().Changed("new-per-day") {
			settings.NewCardsPerDay, _ = cmd.Flags().GetInt("new-per-day")
		}
		if cmd.Flags().Changed("reviews-per-day") {
			settings.ReviewsPerDay, _ = cmd.Flags().GetInt("reviews-per-day")
		}
		if cmd.Flags().Changed("direction") {
			direction, _ := cmd.Flags().GetString("direction")
			settings.DefaultDirection = domain.CardDirection(direction)
		}

		updated, err := a.svc.UpdateDeck(ctx, deck.ID, name, description, settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated deck %q\n", updated.Name)
		return nil
	},
}

var deckDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a deck and all of its cards and history",
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

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			cards, err := a.svc.ListCards(ctx, deck.ID)
			if err != nil {
				return err
			}
			if !confirm(cmd, fmt.Sprintf("Delete deck %q and its %d cards?", deck.Name, len(cards))) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := a.svc.DeleteDeck(ctx, deck.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck %q\n", deck.Name)
		return nil
	},
}

func init() {
	deckCreateCmd.Flags().String("description", "", "deck description")

	deckUpdateCmd.Flags().String("name", "", "new deck name")
	deckUpdateCmd.Flags().String("description", "", "new deck description")
	deckUpdateCmd.Flags().Int("new-per-day", 0, "daily new card limit (0 = unlimited)")
	deckUpdateCmd.Flags().Int("reviews-per-day", 0, "daily review limit (0 = unlimited)")
	deckUpdateCmd.Flags().String("direction", "", "default direction: term-first, meaning-first or random")

	deckDeleteCmd.Flags().Bool("force", false, "skip the confirmation prompt")

	deckCmd.AddCommand(deckListCmd, deckCreateCmd, deckShowCmd, deckUpdateCmd, deckDeleteCmd)
	rootCmd.AddCommand(deckCmd)
}
