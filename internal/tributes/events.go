package tributes

import (
	"fmt"

	"github.com/talgya/tribute-arena/internal/entropy"
)

// EventKind enumerates the adverse events that can befall a single tribute.
type EventKind uint8

const (
	AnimalAttack EventKind = iota
	Dysentery
	LightningStrike
	Hypothermia
	HeatStroke
	Dehydration
	Starvation
	Poisoning
	BrokenBone
	Infection
	Drowning
	Burn
)

// eventStatus maps each event one-to-one onto the status it inflicts.
var eventStatus = [...]StatusKind{
	AnimalAttack:    Mauled,
	Dysentery:       Sick,
	LightningStrike: Electrocuted,
	Hypothermia:     Frozen,
	HeatStroke:      Overheated,
	Dehydration:     Dehydrated,
	Starvation:      Starving,
	Poisoning:       Poisoned,
	BrokenBone:      Broken,
	Infection:       Infected,
	Drowning:        Drowned,
	Burn:            Burned,
}

const numEventKinds = len(eventStatus)

// TributeEvent is one adverse event. Animal is set for AnimalAttack.
type TributeEvent struct {
	Kind   EventKind
	Animal Animal
}

// RandomEvent picks an event uniformly from the catalog; an animal attack
// picks its animal uniformly too.
func RandomEvent(src entropy.Source) TributeEvent {
	e := TributeEvent{Kind: EventKind(src.Intn(numEventKinds))}
	if e.Kind == AnimalAttack {
		e.Animal = Animal(src.Intn(len(animals)))
	}
	return e
}

// Status returns the status this event inflicts.
func (e TributeEvent) Status() Status {
	if int(e.Kind) >= numEventKinds {
		return Status{Kind: Healthy}
	}
	k := eventStatus[e.Kind]
	if k == Mauled {
		return MauledBy(e.Animal)
	}
	return Status{Kind: k}
}

func (e TributeEvent) String() string {
	switch e.Kind {
	case AnimalAttack:
		return fmt.Sprintf("attacked by %s", e.Animal.Plural())
	case Dysentery:
		return "struck down by dysentery"
	case LightningStrike:
		return "struck by lightning"
	case Hypothermia:
		return "suffering from hypothermia"
	case HeatStroke:
		return "suffering from heat stroke"
	case Dehydration:
		return "badly dehydrated"
	case Starvation:
		return "starving"
	case Poisoning:
		return "poisoned"
	case BrokenBone:
		return "nursing a broken bone"
	case Infection:
		return "fighting an infection"
	case Drowning:
		return "nearly drowned"
	case Burn:
		return "badly burned"
	default:
		return "unlucky"
	}
}

// Apply overwrites the tribute's status with the one this event inflicts.
func (e TributeEvent) Apply(t *Tribute) {
	t.Status = e.Status()
}

// AvoidsEvent rolls the luck check at the start of a turn. The chance of
// being hit is 1 - luck/100.
func AvoidsEvent(t *Tribute, src entropy.Source) bool {
	return !entropy.Chance(src, 1-float64(t.Luck)/100)
}
