// Area hazards: random disasters that close an area. Anyone still inside
// a closed area at the next cleanup pass is killed by the arena.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// Hazard trigger tuning.
const (
	dayHazardChance   = 1.0 / 4
	nightHazardChance = 1.0 / 8
	hazardGraceDays   = 3 // No daytime frequency roll on or before this day
	endgameMin        = 2 // Living roster sizes in [endgameMin, endgameMax] force hazards
	endgameMax        = 6
	reopenChance      = 0.5
)

// MaybeTriggerEvents rolls for hazards at the start of a segment and
// applies every one that fires. The result is empty when nothing happened.
func (s *Session) MaybeTriggerEvents(isDay bool) []arena.HazardEvent {
	var out []arena.HazardEvent
	fire := func() {
		if ev, ok := s.triggerHazard(); ok {
			out = append(out, ev)
		}
	}

	chance := nightHazardChance
	if isDay {
		chance = 0
		if s.Day > hazardGraceDays {
			chance = dayHazardChance
		}
	}
	if entropy.Chance(s.rng, chance) {
		fire()
	}

	// The endgame squeezes the survivors together.
	living := len(s.Living())
	if living >= endgameMin && living <= endgameMax {
		fire()
		if entropy.Chance(s.rng, float64(living)/MaxTributes) {
			fire()
		}
	}
	return out
}

// triggerHazard strikes a random open area with a random hazard.
func (s *Session) triggerHazard() (arena.HazardEvent, bool) {
	h, _ := entropy.Pick(s.rng, arena.Hazards())
	a, ok := entropy.Pick(s.rng, s.OpenAreas())
	if !ok {
		slog.Info("no open area for hazard", "game", s.ID, "day", s.Day, "hazard", h)
		s.emit(CategoryHazard, msgNoOpenArea())
		return arena.HazardEvent{}, false
	}
	return s.closeArea(h, a), true
}

// ForceHazard strikes a chosen area, regardless of whether it is open.
func (s *Session) ForceHazard(h arena.Hazard, a arena.Area) (arena.HazardEvent, error) {
	if !a.Valid() {
		return arena.HazardEvent{}, fmt.Errorf("%w: hazard on unknown area %d", ErrInvariant, a)
	}
	if int(h) >= len(arena.Hazards()) {
		return arena.HazardEvent{}, fmt.Errorf("%w: unknown hazard %d", ErrInvariant, h)
	}
	return s.closeArea(h, a), nil
}

func (s *Session) closeArea(h arena.Hazard, a arena.Area) arena.HazardEvent {
	s.Closed[a] = true
	ev := arena.HazardEvent{Hazard: h, Area: a, GameID: s.ID, Day: s.Day}
	s.Hazards = append(s.Hazards, ev)
	s.emit(CategoryHazard, s.msgHazard(h, a))
	slog.Info("hazard", "game", s.ID, "day", s.Day, "hazard", h, "area", a)
	return ev
}

// CleanupClosedAreas kills every living tribute still inside a closed area,
// then reopens each closed area with probability 1/2. It returns the
// tributes it killed.
func (s *Session) CleanupClosedAreas() []*tributes.Tribute {
	var killed []*tributes.Tribute
	for _, a := range arena.All() {
		if !s.Closed[a] {
			continue
		}
		for _, t := range s.InArea(a) {
			t.Kill(ArenaKiller, s.Day)
			t.Hidden = false
			killed = append(killed, t)
			s.emit(CategoryDeath, msgTrapped(t, a))
		}
		if entropy.Chance(s.rng, reopenChance) {
			delete(s.Closed, a)
			s.emit(CategoryHazard, msgAreaReopened(a))
		}
	}
	return killed
}
