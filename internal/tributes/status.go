package tributes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/talgya/tribute-arena/internal/entropy"
)

// ErrUnknownStatus is returned when a stored status string cannot be parsed.
var ErrUnknownStatus = errors.New("unknown status")

// StatusKind enumerates the afflictions a tribute can carry. The declaration
// order is the display/sort order.
type StatusKind uint8

const (
	Healthy StatusKind = iota
	Wounded
	Starving
	Dehydrated
	Sick
	Poisoned
	Electrocuted
	Frozen
	Overheated
	Broken
	Infected
	Drowned
	Burned
	Mauled
	RecentlyDead
	Dead
	Buried
)

var statusNames = [...]string{
	Healthy:      "healthy",
	Wounded:      "wounded",
	Starving:     "starving",
	Dehydrated:   "dehydrated",
	Sick:         "sick",
	Poisoned:     "poisoned",
	Electrocuted: "electrocuted",
	Frozen:       "frozen",
	Overheated:   "overheated",
	Broken:       "broken",
	Infected:     "infected",
	Drowned:      "drowned",
	Burned:       "burned",
	Mauled:       "mauled",
	RecentlyDead: "recently dead",
	Dead:         "dead",
	Buried:       "buried",
}

func (k StatusKind) String() string {
	if int(k) < len(statusNames) {
		return statusNames[k]
	}
	return fmt.Sprintf("StatusKind(%d)", uint8(k))
}

// Status is the single active affliction of a tribute. Animal is only
// meaningful for Mauled. Applying a new status replaces the old one.
type Status struct {
	Kind   StatusKind
	Animal Animal
}

// MauledBy returns the Mauled status for the given animal.
func MauledBy(a Animal) Status {
	return Status{Kind: Mauled, Animal: a}
}

// IsDead reports whether the status is one of the terminal death states.
func (s Status) IsDead() bool {
	return s.Kind == RecentlyDead || s.Kind == Dead || s.Kind == Buried
}

// Less orders statuses by kind, then animal. Display and sorting only.
func (s Status) Less(o Status) bool {
	if s.Kind != o.Kind {
		return s.Kind < o.Kind
	}
	return s.Kind == Mauled && s.Animal < o.Animal
}

func (s Status) String() string {
	if s.Kind == Mauled {
		return fmt.Sprintf("mauled(%s)", s.Animal)
	}
	return s.Kind.String()
}

// MarshalText encodes the status as its string form.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus parses the output of Status.String.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if rest, ok := strings.CutPrefix(key, "mauled("); ok {
		name, ok := strings.CutSuffix(rest, ")")
		if !ok {
			return Status{}, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
		}
		animal, err := ParseAnimal(name)
		if err != nil {
			return Status{}, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
		}
		return MauledBy(animal), nil
	}
	for k, name := range statusNames {
		if key == name && StatusKind(k) != Mauled {
			return Status{Kind: StatusKind(k)}, nil
		}
	}
	return Status{}, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Animal is a creature that can maul a tribute.
type Animal uint8

const (
	Squirrel Animal = iota
	Bear
	Wolf
	Cougar
	Boar
	Snake
	Monkey
	Baboon
	Hyena
	Lion
	Tiger
	Elephant
	Rhino
	Hippo
)

var animals = [...]struct {
	name   string
	plural string
	damage int
}{
	Squirrel: {"squirrel", "squirrels", 1},
	Bear:     {"bear", "bears", 10},
	Wolf:     {"wolf", "wolves", 5},
	Cougar:   {"cougar", "cougars", 6},
	Boar:     {"boar", "boars", 4},
	Snake:    {"snake", "snakes", 3},
	Monkey:   {"monkey", "monkeys", 1},
	Baboon:   {"baboon", "baboons", 3},
	Hyena:    {"hyena", "hyenas", 4},
	Lion:     {"lion", "lions", 8},
	Tiger:    {"tiger", "tigers", 9},
	Elephant: {"elephant", "elephants", 20},
	Rhino:    {"rhino", "rhinos", 15},
	Hippo:    {"hippo", "hippos", 12},
}

// Animals returns every animal in declaration order.
func Animals() []Animal {
	out := make([]Animal, len(animals))
	for i := range animals {
		out[i] = Animal(i)
	}
	return out
}

func (a Animal) String() string {
	if int(a) < len(animals) {
		return animals[a].name
	}
	return fmt.Sprintf("Animal(%d)", uint8(a))
}

// Plural returns the plural name, e.g. "wolves".
func (a Animal) Plural() string {
	if int(a) < len(animals) {
		return animals[a].plural
	}
	return a.String() + "s"
}

// Damage is the fixed health loss a mauling by this animal causes per tick.
func (a Animal) Damage() int {
	if int(a) < len(animals) {
		return animals[a].damage
	}
	return 0
}

// ParseAnimal looks an animal up by its singular name.
func ParseAnimal(name string) (Animal, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, a := range animals {
		if a.name == key {
			return Animal(i), nil
		}
	}
	return 0, fmt.Errorf("unknown animal %q", name)
}

// ApplyStatusTick applies one segment's worth of the active status to t.
// It reports whether the status had a direct effect; tributes without one
// are subject to Suffer instead.
func ApplyStatusTick(t *Tribute, src entropy.Source) bool {
	switch t.Status.Kind {
	case Wounded:
		t.TakesDamage(1)
	case Sick:
		weaken(&t.Strength, 1)
		weaken(&t.Speed, 1)
	case Electrocuted:
		t.TakesDamage(20)
	case Frozen, Overheated:
		weaken(&t.Speed, 1)
	case Dehydrated, Starving:
		weaken(&t.Strength, 1)
	case Poisoned:
		t.TakesMentalDamage(5)
	case Broken:
		if entropy.Chance(src, 0.5) {
			weaken(&t.Speed, 5)
		} else {
			weaken(&t.Strength, 5)
		}
	case Infected, Drowned:
		t.TakesDamage(2)
		t.TakesMentalDamage(2)
	case Mauled:
		t.TakesDamage(t.Status.Animal.Damage())
	case Burned:
		t.TakesDamage(5)
	default:
		return false
	}
	return true
}

// Suffer applies mental decay to a tribute left alone in its area. A failed
// bravery check costs sanity; braver tributes lose less.
func Suffer(t *Tribute, alone bool, src entropy.Source) int {
	if !alone || !t.IsAlive() {
		return 0
	}
	if !entropy.Chance(src, 1-float64(t.Bravery)/100) {
		return 0
	}
	loss := (MaxAttribute - t.Bravery) / 10
	if loss < 1 {
		loss = 1
	}
	t.TakesMentalDamage(loss)
	return loss
}
