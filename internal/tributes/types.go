// Package tributes provides the tribute data model, the status-effect
// machine, combat resolution and the per-turn decision brain.
package tributes

import (
	"github.com/talgya/tribute-arena/internal/arena"
)

// ID is a stable identifier for a tribute.
type ID uint64

// Bounds for vital and fixed attributes.
const (
	MaxVital     = 100
	MaxPhysical  = 50 // Strength and defense
	MaxAttribute = 100
	Districts    = 12
)

// Attributes holds the vitals, which change every turn, and the fixed
// attributes drawn once at creation.
type Attributes struct {
	// Vitals, 0–100.
	Health   int `json:"health"`
	Sanity   int `json:"sanity"`
	Movement int `json:"movement"` // Back to 100 on rest

	// Fixed at creation.
	Strength     int `json:"strength"` // 1–50
	Defense      int `json:"defense"`  // 1–50
	Dexterity    int `json:"dexterity"`
	Bravery      int `json:"bravery"`
	Loyalty      int `json:"loyalty"`
	Speed        int `json:"speed"`
	Intelligence int `json:"intelligence"`
	Persuasion   int `json:"persuasion"`
	Luck         int `json:"luck"`
}

// Statistics are cumulative counters carried across games.
type Statistics struct {
	Kills   int `json:"kills"`
	Wins    int `json:"wins"`
	Defeats int `json:"defeats"`
	Draws   int `json:"draws"`
	Games   int `json:"games"`
}

// Tribute is one participant in the games.
type Tribute struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	District int    `json:"district"` // 1–12

	Attributes

	Area      arena.Area `json:"area"` // Nowhere once out of active play
	Hidden    bool       `json:"hidden"`
	Status    Status     `json:"status"`
	DayKilled int        `json:"day_killed,omitempty"`
	KilledBy  string     `json:"killed_by,omitempty"`

	Statistics Statistics `json:"statistics"`
	Items      []Item     `json:"items,omitempty"`

	// Per-cycle override set by the orchestrator; never persisted.
	Brain Brain `json:"-"`
}

// IsAlive reports whether the tribute still has health. RecentlyDead and
// Dead tributes always have zero health.
func (t *Tribute) IsAlive() bool {
	return t.Health > 0
}

// InPlay reports whether the tribute takes turns this segment.
func (t *Tribute) InPlay() bool {
	return t.IsAlive() && t.Area != arena.Nowhere
}

// TakesDamage lowers health, saturating at zero. Reaching zero marks the
// tribute RecentlyDead in the same step.
func (t *Tribute) TakesDamage(n int) {
	if n <= 0 {
		return
	}
	t.Health = clamp(t.Health-n, 0, MaxVital)
	if t.Health == 0 && !t.Status.IsDead() {
		t.Status = Status{Kind: RecentlyDead}
	}
}

// Heals raises health, saturating at 100. The dead do not heal.
func (t *Tribute) Heals(n int) {
	if n <= 0 || !t.IsAlive() {
		return
	}
	t.Health = clamp(t.Health+n, 0, MaxVital)
}

// TakesMentalDamage lowers sanity, saturating at zero.
func (t *Tribute) TakesMentalDamage(n int) {
	if n <= 0 {
		return
	}
	t.Sanity = clamp(t.Sanity-n, 0, MaxVital)
}

// HealsMental raises sanity, saturating at 100.
func (t *Tribute) HealsMental(n int) {
	if n <= 0 {
		return
	}
	t.Sanity = clamp(t.Sanity+n, 0, MaxVital)
}

// Rests restores movement and a little health and sanity.
func (t *Tribute) Rests() {
	t.Movement = MaxVital
	t.Heals(5)
	t.HealsMental(5)
}

// Kill drops the tribute to zero health, recording who or what did it.
func (t *Tribute) Kill(by string, day int) {
	t.Health = 0
	t.Status = Status{Kind: RecentlyDead}
	t.KilledBy = by
	t.DayKilled = day
}

// weaken lowers a fixed attribute with a floor of 1.
func weaken(attr *int, n int) {
	*attr -= n
	if *attr < 1 {
		*attr = 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
