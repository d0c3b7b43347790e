// Event stream and message text. Every significant state change produces
// one Event, in the order the changes happen.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// Segment is one half of a cycle.
type Segment uint8

const (
	SegmentDay Segment = iota
	SegmentNight
)

func (s Segment) String() string {
	if s == SegmentNight {
		return "night"
	}
	return "day"
}

func (s Segment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Segment) UnmarshalText(b []byte) error {
	switch string(b) {
	case "day":
		*s = SegmentDay
	case "night":
		*s = SegmentNight
	default:
		return fmt.Errorf("unknown segment %q", b)
	}
	return nil
}

// Event categories.
const (
	CategoryGame   = "game"
	CategoryCycle  = "cycle"
	CategoryHazard = "hazard"
	CategoryDeath  = "death"
	CategoryCombat = "combat"
	CategoryStatus = "status"
	CategoryAction = "action"
	CategoryItem   = "item"
)

// Event is a notable occurrence handed to the presentation layer.
type Event struct {
	Day         int     `json:"day" db:"day"`
	Segment     Segment `json:"segment" db:"-"`
	Category    string  `json:"category" db:"-"`
	Description string  `json:"description" db:"message"`
}

// Notifier receives events as they happen.
type Notifier func(Event)

func (s *Session) emit(category, description string) {
	e := Event{
		Day:         s.Day,
		Segment:     s.segment,
		Category:    category,
		Description: description,
	}
	s.Events = append(s.Events, e)
	s.pending = append(s.pending, e)
	slog.Debug("event", "game", s.ID, "day", s.Day, "segment", s.segment, "category", category, "description", description)
	if s.Notify != nil {
		s.Notify(e)
	}
}

// ArenaKiller is recorded as the killer of tributes caught in a closed area.
const ArenaKiller = "the arena"

func title(s string) string {
	return cases.Title(language.English).String(s)
}

func describeTribute(t *tributes.Tribute) string {
	return fmt.Sprintf("%s (%s district)", t.Name, humanize.Ordinal(t.District))
}

func (s *Session) describeArea(a arena.Area) string {
	if terrain, ok := s.Terrain[a]; ok {
		return fmt.Sprintf("%s, a %s", a, terrain.Biome)
	}
	return a.String()
}

func msgGamesBegin(n int) string {
	return fmt.Sprintf("Let the games begin! %d tributes stand at the Cornucopia.", n)
}

func msgSegmentStart(day int, seg Segment) string {
	if seg == SegmentNight {
		return fmt.Sprintf("=== Night falls on the %s day ===", humanize.Ordinal(day))
	}
	return fmt.Sprintf("=== The %s day begins ===", humanize.Ordinal(day))
}

func msgFeast() string {
	return "The Gamemakers announce a feast at the Cornucopia."
}

func (s *Session) msgHazard(h arena.Hazard, a arena.Area) string {
	return fmt.Sprintf("%s strikes %s! The area is closed.", title(h.String()), s.describeArea(a))
}

func msgAreaReopened(a arena.Area) string {
	return fmt.Sprintf("%s is open again.", a)
}

func msgNoOpenArea() string {
	return "The Gamemakers find no open area to strike."
}

func msgTrapped(t *tributes.Tribute, a arena.Area) string {
	return fmt.Sprintf("%s was trapped in %s and killed by %s.", describeTribute(t), a, ArenaKiller)
}

func msgTributeEvent(t *tributes.Tribute, e tributes.TributeEvent) string {
	return fmt.Sprintf("%s is %s.", t.Name, e)
}

func msgStatusDeath(t *tributes.Tribute) string {
	return fmt.Sprintf("%s succumbs to being %s.", t.Name, t.KilledBy)
}

func msgDeath(t *tributes.Tribute) string {
	return fmt.Sprintf("A cannon sounds: %s has died.", describeTribute(t))
}

func msgMove(t *tributes.Tribute, from, to arena.Area) string {
	return fmt.Sprintf("%s moves from %s to %s.", t.Name, from, to)
}

func msgStuck(t *tributes.Tribute) string {
	return fmt.Sprintf("%s tries to move but has nowhere to go.", t.Name)
}

func msgStay(t *tributes.Tribute) string {
	return fmt.Sprintf("%s stays put in %s.", t.Name, t.Area)
}

func msgTooTired(t *tributes.Tribute) string {
	return fmt.Sprintf("%s is too tired to wander and rests.", t.Name)
}

func msgRest(t *tributes.Tribute) string {
	return fmt.Sprintf("%s rests.", t.Name)
}

func msgHide(t *tributes.Tribute) string {
	return fmt.Sprintf("%s hides in %s.", t.Name, t.Area)
}

func msgTakeItem(t *tributes.Tribute, it tributes.Item) string {
	return fmt.Sprintf("%s picks up %s.", t.Name, it.Name)
}

func msgUseItem(t *tributes.Tribute, it tributes.Item) string {
	return fmt.Sprintf("%s uses %s.", t.Name, it)
}

func msgNoTarget(t *tributes.Tribute) string {
	return fmt.Sprintf("%s looks for someone to fight but finds no one.", t.Name)
}

func msgAttack(attacker, target *tributes.Tribute, res tributes.AttackResult) string {
	if attacker == target {
		switch res.Outcome {
		case tributes.Kill:
			return fmt.Sprintf("%s, broken by the arena, takes their own life.", attacker.Name)
		case tributes.Wound:
			return fmt.Sprintf("%s, broken by the arena, hurts themselves.", attacker.Name)
		default:
			return fmt.Sprintf("%s, broken by the arena, cannot go through with it.", attacker.Name)
		}
	}
	switch res.Outcome {
	case tributes.Kill:
		return fmt.Sprintf("%s kills %s (%d vs %d).", res.Winner.Name, res.Loser.Name, winnerTotal(attacker, res), loserTotal(attacker, res))
	case tributes.Wound:
		return fmt.Sprintf("%s wounds %s for %d damage (%d vs %d).", res.Winner.Name, res.Loser.Name, res.Damage, winnerTotal(attacker, res), loserTotal(attacker, res))
	default:
		return fmt.Sprintf("%s attacks %s, but neither lands a blow (%d vs %d).", attacker.Name, target.Name, res.AttackerTotal, res.DefenderTotal)
	}
}

func winnerTotal(attacker *tributes.Tribute, res tributes.AttackResult) int {
	if res.Winner == attacker {
		return res.AttackerTotal
	}
	return res.DefenderTotal
}

func loserTotal(attacker *tributes.Tribute, res tributes.AttackResult) int {
	if res.Winner == attacker {
		return res.DefenderTotal
	}
	return res.AttackerTotal
}

func msgWinner(t *tributes.Tribute, day int) string {
	return fmt.Sprintf("%s is the victor of the games on the %s day!", describeTribute(t), humanize.Ordinal(day))
}

func msgNoWinner() string {
	return "No one wins the games."
}
