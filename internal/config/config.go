// Package config loads the arena's runtime settings from ARENA_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/engine"
)

// Config holds every runtime setting.
type Config struct {
	Seed         int64  `env:"ARENA_SEED" envDefault:"0"` // 0 draws a seed from random.org or crypto/rand
	RandomOrgKey string `env:"ARENA_RANDOM_ORG_KEY"`

	DBDialect string `env:"ARENA_DB_DIALECT" envDefault:"sqlite"`
	DBPath    string `env:"ARENA_DB_PATH" envDefault:"arena.db"`
	DBDSN     string `env:"ARENA_DB_DSN"`

	GameID        string        `env:"ARENA_GAME_ID"` // Empty resumes the latest game or starts a new one
	Tributes      int           `env:"ARENA_TRIBUTES" envDefault:"24"`
	CycleInterval time.Duration `env:"ARENA_CYCLE_INTERVAL" envDefault:"2s"`

	APIPort  int    `env:"ARENA_API_PORT" envDefault:"0"` // 0 disables the HTTP API
	AdminKey string `env:"ARENA_ADMIN_KEY"`

	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`

	ScatterChance float64 `env:"ARENA_SCATTER_CHANCE" envDefault:"0.75"`
	FeastChance   float64 `env:"ARENA_FEAST_CHANCE" envDefault:"0.5"`
	FleeChance    float64 `env:"ARENA_FLEE_CHANCE" envDefault:"0.9"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom is Load over an explicit set of variables.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg, vars); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	if c.Tributes < 0 || c.Tributes > engine.MaxTributes {
		errs = append(errs, fmt.Errorf("ARENA_TRIBUTES must be between 0 and %d, got %d", engine.MaxTributes, c.Tributes))
	}
	for name, p := range map[string]float64{
		"ARENA_SCATTER_CHANCE": c.ScatterChance,
		"ARENA_FEAST_CHANCE":   c.FeastChance,
		"ARENA_FLEE_CHANCE":    c.FleeChance,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %g", name, p))
		}
	}
	switch strings.ToLower(c.DBDialect) {
	case "sqlite":
	case "postgres":
		if c.DBDSN == "" {
			errs = append(errs, errors.New("ARENA_DB_DIALECT=postgres requires ARENA_DB_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ARENA_DB_DIALECT %q", c.DBDialect))
	}
	if c.GameID != "" {
		if _, err := uuid.Parse(c.GameID); err != nil {
			errs = append(errs, fmt.Errorf("ARENA_GAME_ID: %w", err))
		}
	}
	if c.CycleInterval < 0 {
		errs = append(errs, fmt.Errorf("ARENA_CYCLE_INTERVAL must not be negative, got %s", c.CycleInterval))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the configured slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("ARENA_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Engine returns the engine tuning with the configured overrides applied.
func (c Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	ec.ScatterChance = c.ScatterChance
	ec.FeastChance = c.FeastChance
	ec.FleeChance = c.FleeChance
	return ec
}

// Dialect returns the normalized database dialect and its DSN.
func (c Config) Dialect() (string, string) {
	d := strings.ToLower(c.DBDialect)
	if d == "postgres" {
		return d, c.DBDSN
	}
	return d, c.DBPath
}
