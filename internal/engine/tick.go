package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Runner drives a session forward one cycle per interval. The API server
// and the loop share the session through Do, which serializes access.
type Runner struct {
	Session  *Session
	Interval time.Duration // Wall-clock time between cycles
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused

	// OnCycle is called after every completed cycle, under the lock.
	OnCycle func(s *Session)

	mu sync.Mutex
}

// NewRunner creates a runner with a one second interval.
func NewRunner(s *Session) *Runner {
	return &Runner{
		Session:  s,
		Interval: time.Second,
		Speed:    1.0,
	}
}

// Run advances the game until it finishes, ctx is done or a cycle fails.
// A finished game is not an error.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("arena runner started", "game", r.Session.ID, "day", r.Session.Day, "interval", r.Interval)
	defer slog.Info("arena runner stopped", "game", r.Session.ID, "day", r.Session.Day)

	for {
		speed := r.speed()
		if speed <= 0 {
			// Paused.
			if !sleep(ctx, 100*time.Millisecond) {
				return nil
			}
			continue
		}

		start := time.Now()
		err := r.Step(ctx)
		if errors.Is(err, ErrGameFinished) {
			return nil
		}
		if err != nil {
			return err
		}

		target := time.Duration(float64(r.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				return nil
			}
		} else if ctx.Err() != nil {
			return nil
		}
	}
}

// Step runs a single cycle. It returns ErrGameFinished once the game is over.
func (r *Runner) Step(ctx context.Context) error {
	return r.Do(func(s *Session) error {
		if err := s.RunNextCycle(ctx); err != nil {
			return err
		}
		if r.OnCycle != nil {
			r.OnCycle(s)
		}
		if s.State == Finished {
			return ErrGameFinished
		}
		return nil
	})
}

// Do calls fn with exclusive access to the session.
func (r *Runner) Do(fn func(s *Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.Session)
}

// SetSpeed changes the cycle rate; zero pauses the runner.
func (r *Runner) SetSpeed(speed float64) {
	r.mu.Lock()
	r.Speed = speed
	r.mu.Unlock()
}

func (r *Runner) speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Speed
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
