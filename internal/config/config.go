package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Deck     DeckConfig     `mapstructure:"deck" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Path is the sqlite database file. "file::memory:" keeps everything
	// in-process.
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// SessionConfig carries the study session defaults applied when a deck does
// not override them.
type SessionConfig struct {
	MaxNewCards    int  `mapstructure:"max_new_cards" validate:"gte=0"`
	MaxReviewCards int  `mapstructure:"max_review_cards" validate:"gte=0"`
	RandomizeOrder bool `mapstructure:"randomize_order"`
}

// DeckConfig carries the settings stamped onto newly created decks.
type DeckConfig struct {
	NewCardsPerDay   int    `mapstructure:"new_cards_per_day" validate:"gte=0"`
	ReviewsPerDay    int    `mapstructure:"reviews_per_day" validate:"gte=0"`
	DefaultDirection string `mapstructure:"default_direction" validate:"required,oneof=term-first meaning-first random"`
}
