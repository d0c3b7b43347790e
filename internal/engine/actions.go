package engine

import (
	"fmt"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// moveCost is the movement spent per step between areas.
const moveCost = 10

// execute carries out a decided action.
func (s *Session) execute(t *tributes.Tribute, a tributes.Action) error {
	switch a.Kind {
	case tributes.ActionNone:
		return nil

	case tributes.ActionMove:
		return s.travel(t, a.Area)

	case tributes.ActionRest:
		t.Rests()
		s.emit(CategoryAction, msgRest(t))

	case tributes.ActionHide:
		t.Hidden = true
		s.emit(CategoryAction, msgHide(t))

	case tributes.ActionUseItem:
		it, ok := t.UseItem()
		if !ok {
			t.Rests()
			s.emit(CategoryAction, msgRest(t))
			return nil
		}
		s.emit(CategoryItem, msgUseItem(t, it))

	case tributes.ActionTakeItem:
		rest, it, ok := t.TakeItem(s.Items[t.Area], s.rng)
		if !ok {
			return s.travel(t, arena.Nowhere)
		}
		if len(rest) == 0 {
			delete(s.Items, t.Area)
		} else {
			s.Items[t.Area] = rest
		}
		s.emit(CategoryItem, msgTakeItem(t, it))

	case tributes.ActionAttack:
		target, ok := tributes.PickTarget(t, s.attackCandidates(t), s.rng)
		if !ok {
			s.emit(CategoryAction, msgNoTarget(t))
			return nil
		}
		t.Hidden = false
		res := tributes.ResolveAttack(t, target, s.Day, s.rng)
		if res.Outcome == tributes.Kill {
			res.Loser.Hidden = false
		}
		if target != t {
			s.dirty = append(s.dirty, target)
		}
		s.emit(CategoryCombat, msgAttack(t, target, res))

	default:
		return fmt.Errorf("%w: unknown action %d", ErrInvariant, a.Kind)
	}
	return nil
}

// attackCandidates rolls visibility afresh over everyone sharing t's area.
// When nobody is spotted, anyone present will do; the result is empty only
// when t is truly alone.
func (s *Session) attackCandidates(t *tributes.Tribute) []*tributes.Tribute {
	var present, seen []*tributes.Tribute
	for _, o := range s.InArea(t.Area) {
		if o == t {
			continue
		}
		present = append(present, o)
		if tributes.Visible(t, o, s.rng) {
			seen = append(seen, o)
		}
	}
	if len(seen) > 0 {
		return seen
	}
	return present
}

// travel moves t one step. A valid suggested destination is honoured when
// it is adjacent and open, otherwise the tribute heads for the Cornucopia.
// Without a suggestion the tribute picks a random open neighbour, unless it
// is too tired to wander, in which case it rests instead.
func (s *Session) travel(t *tributes.Tribute, suggested arena.Area) error {
	if suggested != arena.Nowhere && !suggested.Valid() {
		return fmt.Errorf("%w: move toward unknown area %d", ErrInvariant, suggested)
	}
	if suggested == t.Area {
		s.emit(CategoryAction, msgStay(t))
		return nil
	}
	if t.Movement <= 0 {
		s.emit(CategoryAction, msgStuck(t))
		return nil
	}

	dest := arena.Nowhere
	switch {
	case suggested != arena.Nowhere:
		if arena.Adjacent(t.Area, suggested) && !s.Closed[suggested] {
			dest = suggested
		} else if t.Area != arena.Cornucopia && !s.Closed[arena.Cornucopia] {
			dest = arena.Cornucopia
		}
	case tributes.LowMovement(t):
		t.Rests()
		s.emit(CategoryAction, msgTooTired(t))
		return nil
	default:
		var open []arena.Area
		for _, n := range arena.Neighbors(t.Area) {
			if !s.Closed[n] {
				open = append(open, n)
			}
		}
		dest, _ = entropy.Pick(s.rng, open)
	}

	if dest == arena.Nowhere {
		s.emit(CategoryAction, msgStuck(t))
		return nil
	}

	from := t.Area
	t.Area = dest
	t.Hidden = false
	t.Movement -= moveCost
	if t.Movement < 0 {
		t.Movement = 0
	}
	s.emit(CategoryAction, msgMove(t, from, dest))
	return nil
}
