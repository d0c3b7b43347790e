// Command arena runs a game of tributes to completion, printing the event
// stream and persisting every turn.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/api"
	"github.com/talgya/tribute-arena/internal/config"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/persistence"
	"github.com/talgya/tribute-arena/internal/tributes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────
	dialect, dsn := cfg.Dialect()
	db, err := persistence.Open(ctx, persistence.Dialect(dialect), dsn)
	if err != nil {
		config.Exitf("open database: %v", err)
	}
	defer db.Close()

	// ── Seed ──────────────────────────────────────────────────────────
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.NewSeed(entropy.NewClient(cfg.RandomOrgKey))
	}
	slog.Info("seed chosen", "seed", seed, "random_org", cfg.RandomOrgKey != "")

	// ── Game ──────────────────────────────────────────────────────────
	sess, err := loadOrCreate(ctx, db, cfg, seed)
	if err != nil {
		config.Exitf("prepare game: %v", err)
	}

	hub := api.NewHub()
	sess.Notify = func(e engine.Event) {
		fmt.Println(formatEvent(e))
		hub.Publish(e)
	}

	runner := engine.NewRunner(sess)
	runner.Interval = cfg.CycleInterval
	runner.OnCycle = func(s *engine.Session) {
		slog.Info("cycle complete", "game", s.ID, "day", s.Day, "living", len(s.Living()), "closed", len(s.Closed))
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.APIPort != 0 {
		if cfg.AdminKey == "" {
			slog.Warn("ARENA_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		srv := (&api.Server{
			Runner:   runner,
			DB:       db,
			Hub:      hub,
			Port:     cfg.APIPort,
			AdminKey: cfg.AdminKey,
		}).Start()
		defer api.Shutdown(srv)
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	}

	// ── Run ───────────────────────────────────────────────────────────
	fmt.Printf("\nGame %s: %d tributes, day %d (%s). Ctrl+C to stop.\n\n",
		sess.ID, len(sess.Tributes), sess.Day, sess.State)

	if err := runner.Run(ctx); err != nil {
		slog.Error("game aborted", "game", sess.ID, "day", sess.Day, "error", err)
		os.Exit(1)
	}

	// Final save on shutdown.
	runner.Do(func(s *engine.Session) error {
		if err := db.SaveSession(context.Background(), s); err != nil {
			slog.Error("final save failed", "error", err)
		}
		if w, ok := s.Winner(); ok {
			fmt.Printf("\n%s of district %d wins after %d days with %d kills.\n", w.Name, w.District, s.Day, w.Statistics.Kills)
		} else if s.State == engine.Finished {
			fmt.Println("\nThe games ended without a victor.")
		} else {
			fmt.Printf("\nGame paused on day %d. Run again to resume.\n", s.Day)
		}
		return nil
	})
}

// loadOrCreate resumes the configured game, or the latest unfinished one,
// and otherwise creates a new game with a freshly spawned roster.
func loadOrCreate(ctx context.Context, db *persistence.DB, cfg config.Config, seed int64) (*engine.Session, error) {
	src := entropy.New(seed)

	id := uuid.Nil
	if cfg.GameID != "" {
		id = uuid.MustParse(cfg.GameID)
	} else if latest, err := db.LatestGame(ctx); err == nil {
		id = latest
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return nil, err
	}

	var sess *engine.Session
	if id != uuid.Nil {
		loaded, err := db.LoadSession(ctx, id)
		switch {
		case err == nil && (loaded.State != engine.Finished || cfg.GameID != ""):
			roster, err := db.LoadRoster(ctx, id)
			if err != nil {
				return nil, err
			}
			loaded.Attach(roster, src)
			sess = loaded
			slog.Info("game resumed", "game", id, "day", sess.Day, "state", sess.State, "tributes", len(roster))
		case err == nil, errors.Is(err, persistence.ErrNotFound):
		default:
			return nil, err
		}
	}
	if sess == nil {
		if id == uuid.Nil || cfg.GameID == "" {
			id = uuid.New()
		}
		sess = engine.NewSession(id, nil, src)
		slog.Info("new game", "game", id)
	}
	sess.Config = cfg.Engine()
	sess.Store = db

	if sess.State == engine.NotStarted {
		spawner := tributes.NewSpawner(seed, nil)
		var maxID tributes.ID
		for _, t := range sess.Tributes {
			maxID = max(maxID, t.ID)
		}
		spawner.SetNextID(maxID+1, len(sess.Tributes))
		for len(sess.Tributes) < cfg.Tributes {
			if err := sess.AddTribute(spawner.Spawn()); err != nil {
				return nil, err
			}
		}
	}
	return sess, nil
}

func formatEvent(e engine.Event) string {
	return fmt.Sprintf("[day %2d %-5s] %s", e.Day, e.Segment, e.Description)
}
