// Package cli implements the kioku command tree: deck and card management,
// the interactive study loop, statistics, import/export and vocabulary
// conversion. Commands wire configuration, logging, the sqlite store and
// the study service together per invocation.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hakusan/kioku/internal/config"
	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
	"github.com/hakusan/kioku/internal/platform/logger"
	"github.com/hakusan/kioku/internal/platform/sqlite"
	"github.com/hakusan/kioku/internal/service"
	"github.com/hakusan/kioku/internal/store"
)

var (
	configFile string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "kioku",
	Short: "Spaced repetition flashcards for Japanese study",
	Long: `kioku manages flashcard decks and schedules reviews with the SM-2
algorithm. Decks live in a local sqlite database; vocabulary and kanji
lists can be converted into cards, studied, and moved between machines
through JSON export files.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: environment only)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
}

// app bundles the wired application components for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	svc     service.StudyService
	decks   store.DeckStore
	cards   store.CardStore
	reviews store.ReviewStore
	stats   store.StatsStore
}

// newApp loads configuration, sets up logging, opens the database and
// builds the study service. Callers must Close the returned app.
func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := sqlite.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	decks := sqlite.NewDeckStore(db, log)
	cards := sqlite.NewCardStore(db, log)
	reviews := sqlite.NewReviewStore(db, log)
	stats := sqlite.NewStatsStore(db, log)

	svc, err := service.NewStudyService(
		db, decks, cards, reviews, stats,
		srs.NewDefaultService(), log, time.Now,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build study service: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		db:      db,
		svc:     svc,
		decks:   decks,
		cards:   cards,
		reviews: reviews,
		stats:   stats,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// deckByName resolves a deck argument, wrapping the not-found case into a
// message that names the deck.
func (a *app) deckByName(ctx context.Context, name string) (*domain.Deck, error) {
	d, err := a.svc.GetDeckByName(ctx, name)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("deck %q not found", name)
		}
		return nil, err
	}
	return d, nil
}
