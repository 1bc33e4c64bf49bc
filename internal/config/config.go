// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the runner needs. Zero Seed means pick one.
type Config struct {
	Seed     int64  `env:"CONTINUUM_SEED" envDefault:"0"`
	DBPath   string `env:"CONTINUUM_DB" envDefault:"data/continuum.db"`
	Turns    int    `env:"CONTINUUM_TURNS" envDefault:"0"`
	TeamSize int    `env:"CONTINUUM_TEAM_SIZE" envDefault:"4"`
	APIPort  int    `env:"CONTINUUM_API_PORT" envDefault:"8080"`
	AdminKey string `env:"CONTINUUM_ADMIN_KEY"`
	LogLevel string `env:"CONTINUUM_LOG_LEVEL" envDefault:"info"`
	// TurnDelayMS paces the turn loop so the API has something to watch.
	TurnDelayMS int `env:"CONTINUUM_TURN_DELAY_MS" envDefault:"1000"`
	// SaveEvery persists the session every N turns.
	SaveEvery int `env:"CONTINUUM_SAVE_EVERY" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TeamSize < 1 {
		return cfg, fmt.Errorf("team size %d: need at least one operative", cfg.TeamSize)
	}
	if cfg.SaveEvery < 1 {
		cfg.SaveEvery = 10
	}
	return cfg, nil
}

// SlogLevel maps the configured log level name onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
