package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats [deck]",
	Short: "Show study statistics",
	Long: `Without arguments, shows totals across every deck for the trailing
period. With a deck name, shows that deck's summary, review forecast and
daily history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		days, _ := cmd.Flags().GetInt("days")
		now := timeNow()
		out := cmd.OutOrStdout()

		deckID := uuid.Nil
		if len(args) > 0 {
			deck, err := a.deckByName(ctx, args[0])
			if err != nil {
				return err
			}
			deckID = deck.ID

			cards, err := a.svc.ListCards(ctx, deck.ID)
			if err != nil {
				return err
			}
			reviews, err := a.reviews.GetByDeck(ctx, deck.ID)
			if err != nil {
				return err
			}

			summary := stats.CalculateDeckStats(cards, reviews, now)
			fmt.Fprintf(out, "%s\n\n", deck.Name)
			fmt.Fprintf(out, "Cards: %d (%d mature, %d young, %d new, %d suspended)\n",
				summary.TotalCards, stats.MatureCount(cards), stats.YoungCount(cards),
				summary.NewCards, summary.SuspendedCards)
			fmt.Fprintf(out, "Retention (30d): %d%%   Average ease: %.2f\n",
				summary.RetentionRate, summary.AverageEaseFactor)
			fmt.Fprintf(out, "Streak: %d days (longest %d)\n\n",
				summary.CurrentStreak, summary.LongestStreak)

			fmt.Fprintf(out, "Forecast (next %d days):\n", days)
			forecast := stats.Forecast(cards, days, now)
			printForecast(out, forecast)
			fmt.Fprintln(out)
		}

		start := domain.DateKey(now.AddDate(0, 0, -(days - 1)))
		end := domain.DateKey(now)
		rows, err := a.stats.GetRange(ctx, start, end, deckID)
		if err != nil {
			return err
		}

		agg := stats.AggregateDailyStats(rows)
		fmt.Fprintf(out, "Last %d days: %d reviews on %d days (%d/day average)\n",
			days, agg.TotalReviewed, agg.Days, agg.AveragePerDay)
		fmt.Fprintf(out, "New cards learned: %d   Correct: %d   Incorrect: %d\n",
			agg.TotalNewLearned, agg.TotalCorrect, agg.TotalIncorrect)
		fmt.Fprintf(out, "Study time: %s\n", stats.FormatStudyTime(agg.TotalStudyTimeMs))
		return nil
	},
}

func printForecast(out io.Writer, forecast map[string]int) {
	days := make([]string, 0, len(forecast))
	for day := range forecast {
		days = append(days, day)
	}
	sort.Strings(days)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range days {
		fmt.Fprintf(w, "  %s\t%d\n", day, forecast[day])
	}
	w.Flush()
}

func init() {
	statsCmd.Flags().Int("days", 7, "period length in days")

	rootCmd.AddCommand(statsCmd)
}
