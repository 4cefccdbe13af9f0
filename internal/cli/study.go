package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
	"github.com/hakusan/kioku/internal/session"
	"github.com/hakusan/kioku/internal/stats"
)

var studyCmd = &cobra.Command{
	Use:   "study <deck>",
	Short: "Review a deck's due and new cards",
	Long: `Runs an interactive review session. Each card shows its question
side first; press enter to reveal the answer, then rate your recall:

  1  again  (forgot, the card starts over)
  2  hard
  3  good
  4  easy
  s  suspend the card and move on
  q  end the session early`,
	Args: cobra.ExactArgs(1),
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

		cfg := session.Config{
			MaxNewCards:    deck.Settings.NewCardsPerDay,
			MaxReviewCards: deck.Settings.ReviewsPerDay,
			RandomizeOrder: a.cfg.Session.RandomizeOrder,
		}
		queue := session.BuildQueue(cards, cfg, timeNow(), nil)

		if queue.IsComplete() {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to review. Come back later!")
			return nil
		}

		progress := queue.Progress()
		fmt.Fprintf(cmd.OutOrStdout(), "Studying %q: %d cards (%d review, %d new)\n\n",
			deck.Name, progress.Total, len(queue.ReviewCards), len(queue.NewCards))

		scheduler := srs.NewDefaultService()
		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		var studied, correct int
		sessionStart := timeNow()

		for {
			card := queue.NextCard()
			if card == nil {
				break
			}

			display := session.PrepareForDisplay(card, deck.Settings.DefaultDirection, nil)

			progress = queue.Progress()
			fmt.Fprintf(out, "[%d/%d] %s\n", progress.Completed+1, progress.Total, display.Front)
			if display.FrontReading != "" {
				fmt.Fprintf(out, "      (%s)\n", display.FrontReading)
			}
			fmt.Fprint(out, "\nPress enter to reveal... ")
			if _, err := reader.ReadString('\n'); err != nil {
				break
			}
			shownAt := timeNow()

			fmt.Fprintf(out, "\n%s\n", display.Back)
			if display.BackReading != "" {
				fmt.Fprintf(out, "(%s)\n", display.BackReading)
			}
			if card.Notes != "" {
				fmt.Fprintf(out, "Note: %s\n", card.Notes)
			}

			intervals := scheduler.PreviewIntervals(card.State, shownAt)
			fmt.Fprintf(out, "\n1 again (%s)  2 hard (%s)  3 good (%s)  4 easy (%s)  s suspend  q quit\n",
				srs.FormatInterval(intervals[domain.RatingAgain]),
				srs.FormatInterval(intervals[domain.RatingHard]),
				srs.FormatInterval(intervals[domain.RatingGood]),
				srs.FormatInterval(intervals[domain.RatingEasy]))

			rating, action, err := readRating(reader, out)
			if err != nil {
				return err
			}
			if action == actionQuit {
				break
			}
			if action == actionSuspend {
				if _, err := a.svc.SetCardSuspended(ctx, card.ID, true); err != nil {
					return err
				}
				queue = queue.CompleteCard(card.ID)
				fmt.Fprintln(out, "Suspended.")
				continue
			}

			responseTime := timeNow().Sub(shownAt).Milliseconds()
			if _, err := a.svc.RecordReview(ctx, card.ID, rating, responseTime); err != nil {
				return err
			}

			studied++
			if rating.Correct() {
				correct++
			}
			queue = queue.CompleteCard(card.ID)
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "\nSession over: %d cards studied, %d correct, %s\n",
			studied, correct, stats.FormatStudyTime(timeNow().Sub(sessionStart).Milliseconds()))
		return nil
	},
}

type studyAction int

const (
	actionRate studyAction = iota
	actionSuspend
	actionQuit
)

// readRating loops until the learner enters a rating or a session action.
func readRating(reader *bufio.Reader, out io.Writer) (domain.Rating, studyAction, error) {
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, actionQuit, nil
		}

		switch strings.TrimSpace(line) {
		case "1", "again":
			return domain.RatingAgain, actionRate, nil
		case "2", "hard":
			return domain.RatingHard, actionRate, nil
		case "3", "good":
			return domain.RatingGood, actionRate, nil
		case "4", "easy":
			return domain.RatingEasy, actionRate, nil
		case "s", "suspend":
			return 0, actionSuspend, nil
		case "q", "quit":
			return 0, actionQuit, nil
		default:
			fmt.Fprintln(out, "Enter 1-4, s or q.")
		}
	}
}

func init() {
	rootCmd.AddCommand(studyCmd)
}
