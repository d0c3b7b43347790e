// Tribute decision-making: a randomized decision tree over the tribute's
// vitals and the enemies it can see. Every turn yields exactly one Action.
package tributes

import (
	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/entropy"
)

// ActionKind enumerates what a tribute can do in a turn.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionRest
	ActionUseItem
	ActionAttack
	ActionHide
	ActionTakeItem
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionRest:
		return "rest"
	case ActionUseItem:
		return "use item"
	case ActionAttack:
		return "attack"
	case ActionHide:
		return "hide"
	case ActionTakeItem:
		return "take item"
	default:
		return "unknown"
	}
}

// Action is a decision. Area is the suggested destination for a move;
// Nowhere means "anywhere reachable".
type Action struct {
	Kind ActionKind
	Area arena.Area
}

// Move returns a move action toward the suggested area.
func Move(suggested arena.Area) Action {
	return Action{Kind: ActionMove, Area: suggested}
}

// Brain holds the per-cycle override the orchestrator can set.
type Brain struct {
	Preferred       *Action
	PreferredChance float64
}

// Prefer sets an override honoured with probability chance.
func (b *Brain) Prefer(a Action, chance float64) {
	b.Preferred = &a
	b.PreferredChance = chance
}

// Clear drops any override.
func (b *Brain) Clear() {
	b.Preferred = nil
	b.PreferredChance = 0
}

// Surroundings is what a tribute perceives at the start of its decision.
type Surroundings struct {
	Visible   []*Tribute // Enemies in the same area the tribute can see
	ItemsHere int        // Items lying in the tribute's area
	Alone     bool       // Nobody else, hidden or not, shares the area
}

// Thresholds of the decision tree.
const (
	crowdSize    = 5  // More visible enemies than this is a crowd
	braveSanity  = 20 // Hiding requires sanity above this
	senseAttack  = 36 // Crowd sense below this attacks
	senseHide    = 85 // Crowd sense at or above this hides
	lowMovement  = 10 // At or below, only an explicit destination is honoured
	restHealth   = 20
	hideHealth   = 30
	fleeHealth   = 10
	cornerHealth = 5
)

// Decide picks the tribute's action for this turn.
func (b *Brain) Decide(t *Tribute, env Surroundings, src entropy.Source) Action {
	if !t.IsAlive() {
		return Action{Kind: ActionNone}
	}
	if b.Preferred != nil && entropy.Chance(src, b.PreferredChance) {
		return *b.Preferred
	}

	action := decideByThreat(t, len(env.Visible), env.Alone)
	return refineForItems(t, action, env)
}

func decideByThreat(t *Tribute, enemies int, alone bool) Action {
	if t.Area == arena.Nowhere {
		return Action{Kind: ActionNone}
	}
	if t.Movement <= 0 {
		return Action{Kind: ActionRest}
	}

	canHide := t.Sanity > braveSanity && !t.Hidden

	switch {
	case enemies == 0:
		switch {
		case alone && t.Sanity < braveSanity:
			// Despair: PickTarget decides whether it turns on itself.
			return Action{Kind: ActionAttack}
		case t.Health <= restHealth:
			return Action{Kind: ActionRest}
		case t.Health <= hideHealth:
			if canHide {
				return Action{Kind: ActionHide}
			}
			return Move(arena.Nowhere)
		default:
			return Move(arena.Nowhere)
		}

	case enemies <= crowdSize:
		switch {
		case t.Health <= cornerHealth:
			if canHide {
				return Action{Kind: ActionHide}
			}
			return Action{Kind: ActionAttack}
		case t.Health <= fleeHealth:
			if t.Sanity > braveSanity {
				return Move(arena.Nowhere)
			}
			return Action{Kind: ActionAttack}
		default:
			return Action{Kind: ActionAttack}
		}

	default:
		sense := 100 - t.Intelligence - t.Sanity
		switch {
		case sense < senseAttack:
			return Action{Kind: ActionAttack}
		case sense >= senseHide:
			return Action{Kind: ActionHide}
		default:
			return Move(arena.Nowhere)
		}
	}
}

// refineForItems swaps a rest for item use when the tribute carries a
// consumable, and an unthreatened move for scavenging when items are close.
func refineForItems(t *Tribute, a Action, env Surroundings) Action {
	switch {
	case a.Kind == ActionRest && t.HasConsumable():
		return Action{Kind: ActionUseItem}
	case a.Kind == ActionMove && len(env.Visible) == 0 && env.ItemsHere > 0:
		return Action{Kind: ActionTakeItem}
	}
	return a
}

// Visible reports whether observer spots target this check. Unhidden
// tributes are always seen; a hidden one is seen with probability
// 1 - observer.Intelligence/100, rolled fresh each call.
func Visible(observer, target *Tribute, src entropy.Source) bool {
	if !target.Hidden {
		return true
	}
	return entropy.Chance(src, 1-float64(observer.Intelligence)/100)
}

// PickTarget chooses whom t attacks among the candidates it found in its
// area. Tributes from other districts are preferred. With no candidates the
// tribute is alone, and a badly shaken one may turn on itself; ok is false
// when there is no target at all.
func PickTarget(t *Tribute, candidates []*Tribute, src entropy.Source) (target *Tribute, ok bool) {
	if len(candidates) == 0 {
		switch {
		case t.Sanity < 10 && entropy.Chance(src, 0.2):
			return t, true
		case t.Sanity >= 10 && t.Sanity < 20 && entropy.Chance(src, 0.1):
			return t, true
		}
		return nil, false
	}

	enemies := make([]*Tribute, 0, len(candidates))
	for _, c := range candidates {
		if c.District != t.District {
			enemies = append(enemies, c)
		}
	}
	if len(enemies) == 0 {
		enemies = candidates
	}
	return entropy.Pick(src, enemies)
}

// LowMovement reports whether the tribute may only travel to an explicit
// destination this turn.
func LowMovement(t *Tribute) bool {
	return t.Movement > 0 && t.Movement <= lowMovement
}
