package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/tributes"
)

func TestRunnerPlaysToTheEnd(t *testing.T) {
	s := NewSession(testGameID, nil, entropy.New(77))
	s.FillRoster(tributes.NewSpawner(77, nil))

	r := NewRunner(s)
	r.Interval = 0
	cycles := 0
	r.OnCycle = func(*Session) { cycles++ }

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.State != Finished {
		t.Fatalf("state = %s after %d cycles", s.State, cycles)
	}
	if cycles != s.Day {
		t.Fatalf("OnCycle called %d times over %d days", cycles, s.Day)
	}
	if err := r.Step(ctx); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("step after the end: %v", err)
	}
}

func TestRunnerPausedStopsOnCancel(t *testing.T) {
	s := NewSession(testGameID, []*tributes.Tribute{newTribute(1, 1), newTribute(2, 2)}, entropy.New(1))
	r := NewRunner(s)
	r.SetSpeed(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	if s.Day != 0 {
		t.Fatalf("paused runner advanced to day %d", s.Day)
	}
}
