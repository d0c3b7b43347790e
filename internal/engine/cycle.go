// Day/night cycle orchestration. A cycle is a day segment followed by a
// night segment; each segment runs hazard cleanup, hazard injection, one
// turn per living tribute in a fresh random order, then death cleanup.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// RunNextCycle advances the game by one day. It starts the game if needed
// and ends it as soon as at most one tribute is left alive. A cycle either
// completes or returns an error; callers must treat errors as fatal.
func (s *Session) RunNextCycle(ctx context.Context) error {
	if s.State == Finished {
		return ErrGameFinished
	}
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	s.Day++
	s.segment = SegmentDay
	if s.finishIfDecided() {
		return s.flush(ctx)
	}

	s.prepareCycle()
	defer s.clearOverrides()

	for _, seg := range []Segment{SegmentDay, SegmentNight} {
		if err := s.runSegment(ctx, seg); err != nil {
			return fmt.Errorf("day %d %s: %w", s.Day, seg, err)
		}
		if s.finishIfDecided() {
			break
		}
	}
	return s.flush(ctx)
}

// finishIfDecided ends the game when zero or one tribute is alive.
func (s *Session) finishIfDecided() bool {
	living := s.Living()
	switch len(living) {
	case 0:
		s.State = Finished
		s.WinnerID = nil
		s.emit(CategoryGame, msgNoWinner())
		slog.Info("game over, no winner", "game", s.ID, "day", s.Day)
		return true
	case 1:
		w := living[0]
		id := w.ID
		s.State = Finished
		s.WinnerID = &id
		s.emit(CategoryGame, msgWinner(w, s.Day))
		slog.Info("game over", "game", s.ID, "day", s.Day, "winner", w.Name, "district", w.District)
		return true
	default:
		return false
	}
}

// prepareCycle sets the per-cycle brain overrides: everyone scatters on the
// first day and heads back to the Cornucopia on feast day.
func (s *Session) prepareCycle() {
	switch s.Day {
	case 1:
		for _, t := range s.Living() {
			t.Brain.Prefer(tributes.Move(arena.Nowhere), s.Config.ScatterChance)
		}
	case s.Config.FeastDay:
		s.emit(CategoryGame, msgFeast())
		s.stock(arena.Cornucopia, s.Config.FeastItems)
		for _, t := range s.Living() {
			t.Brain.Prefer(tributes.Move(arena.Cornucopia), s.Config.FeastChance)
		}
	}
}

func (s *Session) clearOverrides() {
	for _, t := range s.Tributes {
		t.Brain.Clear()
	}
}

func (s *Session) runSegment(ctx context.Context, seg Segment) error {
	s.segment = seg
	s.emit(CategoryCycle, msgSegmentStart(s.Day, seg))

	s.CleanupClosedAreas()
	s.MaybeTriggerEvents(seg == SegmentDay)

	order := make([]*tributes.Tribute, 0, len(s.Tributes))
	for _, t := range s.Tributes {
		if t.InPlay() {
			order = append(order, t)
		}
	}
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, t := range order {
		// Killed earlier this segment by someone else.
		if !t.InPlay() {
			continue
		}
		if err := s.takeTurn(t); err != nil {
			return err
		}
		if err := s.saveTribute(ctx, t); err != nil {
			return err
		}
		// Tributes hurt by t's attack.
		for _, o := range s.dirty {
			if err := s.saveTribute(ctx, o); err != nil {
				return err
			}
		}
		s.dirty = s.dirty[:0]
	}

	for _, t := range s.collectDead() {
		if err := s.saveTribute(ctx, t); err != nil {
			return err
		}
	}
	return s.flush(ctx)
}

// takeTurn runs one tribute's turn: luck check, status tick, then the
// brain's decision and its execution.
func (s *Session) takeTurn(t *tributes.Tribute) error {
	if !t.Area.Valid() {
		return fmt.Errorf("%w: tribute %d in unknown area %d", ErrInvariant, t.ID, t.Area)
	}

	if !tributes.AvoidsEvent(t, s.rng) {
		ev := tributes.RandomEvent(s.rng)
		ev.Apply(t)
		s.emit(CategoryStatus, msgTributeEvent(t, ev))
	}

	cause := t.Status
	alone := len(s.InArea(t.Area)) == 1
	if !tributes.ApplyStatusTick(t, s.rng) {
		tributes.Suffer(t, alone, s.rng)
	}

	if !t.IsAlive() {
		// TakesDamage has already marked the tribute RecentlyDead.
		t.KilledBy = cause.String()
		t.DayKilled = s.Day
		t.Hidden = false
		s.emit(CategoryDeath, msgStatusDeath(t))
		return nil
	}

	brain := t.Brain
	if s.Closed[t.Area] {
		brain.Prefer(tributes.Move(arena.Nowhere), s.Config.FleeChance)
	}

	action := brain.Decide(t, tributes.Surroundings{
		Visible:   s.visibleTo(t),
		ItemsHere: len(s.Items[t.Area]),
		Alone:     alone,
	}, s.rng)
	return s.execute(t, action)
}

// visibleTo returns the other living tributes in t's area that t spots.
func (s *Session) visibleTo(t *tributes.Tribute) []*tributes.Tribute {
	var out []*tributes.Tribute
	for _, o := range s.InArea(t.Area) {
		if o == t {
			continue
		}
		if tributes.Visible(t, o, s.rng) {
			out = append(out, o)
		}
	}
	return out
}

// collectDead moves every RecentlyDead tribute to Dead and out of the arena.
func (s *Session) collectDead() []*tributes.Tribute {
	var dead []*tributes.Tribute
	for _, t := range s.Tributes {
		if t.Health > 0 {
			continue
		}
		if t.Status.Kind != tributes.RecentlyDead && t.Status.Kind != tributes.Wounded {
			continue
		}
		t.Status = tributes.Status{Kind: tributes.Dead}
		t.Area = arena.Nowhere
		t.Hidden = false
		dead = append(dead, t)
		s.emit(CategoryDeath, msgDeath(t))
		slog.Info("tribute died", "game", s.ID, "day", s.Day, "tribute", t.Name, "killed_by", t.KilledBy)
	}
	return dead
}
