package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"ARENA_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg, nil); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ARENA_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse ARENA_* env:") {
		t.Fatalf("expected parse prefix, got %v", err)
	}
}

func TestParseEnvFromMap(t *testing.T) {
	t.Setenv("ARENA_TEST_PORT", "999")

	var cfg envTestConfig
	if err := ParseEnv(&cfg, map[string]string{"ARENA_TEST_PORT": "7"}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 7 {
		t.Fatalf("port = %d, want the map value 7", cfg.Port)
	}

	cfg = envTestConfig{}
	if err := ParseEnv(&cfg, map[string]string{}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want default 123 from an empty map", cfg.Port)
	}
}

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"ARENA_TRIBUTES": "4", "ARENA_DB_DIALECT": "SQLite"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tributes != 4 {
		t.Fatalf("tributes = %d", cfg.Tributes)
	}
	if d, path := cfg.Dialect(); d != "sqlite" || path != "arena.db" {
		t.Fatalf("dialect = %s %s", d, path)
	}
	if _, err := LoadFrom(map[string]string{"ARENA_TRIBUTES": "25"}); err == nil {
		t.Fatal("expected a roster above 24 to fail validation")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tributes != 24 || cfg.DBDialect != "sqlite" || cfg.CycleInterval != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	ec := cfg.Engine()
	if ec.ScatterChance != 0.75 || ec.FeastChance != 0.5 || ec.FleeChance != 0.9 || ec.FeastDay != 3 {
		t.Fatalf("engine config = %+v", ec)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelInfo {
		t.Fatalf("level = %s", lvl)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARENA_SEED", "42")
	t.Setenv("ARENA_TRIBUTES", "6")
	t.Setenv("ARENA_CYCLE_INTERVAL", "250ms")
	t.Setenv("ARENA_FLEE_CHANCE", "0")
	t.Setenv("ARENA_LOG_LEVEL", "debug")
	t.Setenv("ARENA_DB_DIALECT", "postgres")
	t.Setenv("ARENA_DB_DSN", "postgres://arena@localhost/arena")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.Tributes != 6 || cfg.CycleInterval != 250*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Engine().FleeChance != 0 {
		t.Fatal("flee chance override lost")
	}
	if d, dsn := cfg.Dialect(); d != "postgres" || dsn != "postgres://arena@localhost/arena" {
		t.Fatalf("dialect = %s %s", d, dsn)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Fatalf("level = %s", lvl)
	}
}

func TestValidate(t *testing.T) {
	base, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"too many tributes", func(c *Config) { c.Tributes = 30 }, "ARENA_TRIBUTES"},
		{"chance above one", func(c *Config) { c.FeastChance = 1.5 }, "ARENA_FEAST_CHANCE"},
		{"postgres without dsn", func(c *Config) { c.DBDialect = "postgres" }, "ARENA_DB_DSN"},
		{"unknown dialect", func(c *Config) { c.DBDialect = "mysql" }, "ARENA_DB_DIALECT"},
		{"bad game id", func(c *Config) { c.GameID = "seven" }, "ARENA_GAME_ID"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "ARENA_LOG_LEVEL"},
		{"negative interval", func(c *Config) { c.CycleInterval = -time.Second }, "ARENA_CYCLE_INTERVAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
