package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files. An empty configFile skips file loading entirely; a non-empty path
// that does not exist is an error. Returns a populated Config struct or an
// error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("KIOKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so that environment-only
// overrides are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "kioku.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("session.max_new_cards", 20)
	v.SetDefault("session.max_review_cards", 200)
	v.SetDefault("session.randomize_order", true)

	v.SetDefault("deck.new_cards_per_day", 20)
	v.SetDefault("deck.reviews_per_day", 200)
	v.SetDefault("deck.default_direction", "meaning-first")
}
