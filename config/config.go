// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the player's runtime settings. Command-line flags override
// these in cmd/cyoa.
type Config struct {
	SaveDir  string `env:"CYOA_SAVE_DIR"`
	LogLevel string `env:"CYOA_LOG_LEVEL" envDefault:"warn"`
	LogFile  string `env:"CYOA_LOG_FILE"`
	Seed     int64  `env:"CYOA_SEED"`
	History  int    `env:"CYOA_HISTORY"   envDefault:"50"`
}

// Load parses the environment. An unset save directory defaults to
// ~/.cyoa/saves.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SaveDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.SaveDir = filepath.Join(home, ".cyoa", "saves")
	}
	if cfg.History < 1 {
		return Config{}, fmt.Errorf("CYOA_HISTORY must be at least 1, got %d", cfg.History)
	}
	return cfg, nil
}
