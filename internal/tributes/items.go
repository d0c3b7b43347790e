package tributes

import (
	"fmt"

	"github.com/talgya/tribute-arena/internal/entropy"
)

// ItemAttribute is the vital an item restores when used.
type ItemAttribute uint8

const (
	RestoresHealth ItemAttribute = iota
	RestoresSanity
	RestoresMovement
)

func (a ItemAttribute) String() string {
	switch a {
	case RestoresHealth:
		return "health"
	case RestoresSanity:
		return "sanity"
	case RestoresMovement:
		return "movement"
	default:
		return "nothing"
	}
}

// Item is a consumable lying in an area or carried by a tribute.
// Quantity is the number of uses left; an item at zero is removed.
type Item struct {
	Name      string        `json:"name"`
	Attribute ItemAttribute `json:"attribute"`
	Effect    int           `json:"effect"`
	Quantity  int           `json:"quantity"`
}

func (i Item) String() string {
	return fmt.Sprintf("%s (+%d %s)", i.Name, i.Effect, i.Attribute)
}

var itemTemplates = []Item{
	{Name: "bandages", Attribute: RestoresHealth, Effect: 10, Quantity: 2},
	{Name: "medicine kit", Attribute: RestoresHealth, Effect: 25, Quantity: 1},
	{Name: "salve", Attribute: RestoresHealth, Effect: 5, Quantity: 3},
	{Name: "dried fruit", Attribute: RestoresSanity, Effect: 10, Quantity: 2},
	{Name: "letter from home", Attribute: RestoresSanity, Effect: 20, Quantity: 1},
	{Name: "energy bar", Attribute: RestoresMovement, Effect: 30, Quantity: 2},
	{Name: "water flask", Attribute: RestoresMovement, Effect: 20, Quantity: 3},
}

// RandomItem returns a fresh copy of a random item template.
func RandomItem(src entropy.Source) Item {
	it, _ := entropy.Pick(src, itemTemplates)
	return it
}

// TakeItem moves a random item out of pool into the tribute's inventory and
// returns the shrunken pool. ok is false when the pool is empty.
func (t *Tribute) TakeItem(pool []Item, src entropy.Source) (rest []Item, taken Item, ok bool) {
	if len(pool) == 0 {
		return pool, Item{}, false
	}
	i := src.Intn(len(pool))
	taken = pool[i]
	rest = append(pool[:i:i], pool[i+1:]...)
	t.Items = append(t.Items, taken)
	return rest, taken, true
}

// HasConsumable reports whether the tribute carries an item with uses left.
func (t *Tribute) HasConsumable() bool {
	for _, it := range t.Items {
		if it.Quantity > 0 {
			return true
		}
	}
	return false
}

// UseItem consumes one use of the first usable item, applying its effect.
// Exhausted items are removed from the inventory.
func (t *Tribute) UseItem() (Item, bool) {
	for i := range t.Items {
		it := &t.Items[i]
		if it.Quantity <= 0 {
			continue
		}
		used := *it
		switch it.Attribute {
		case RestoresHealth:
			t.Heals(it.Effect)
		case RestoresSanity:
			t.HealsMental(it.Effect)
		case RestoresMovement:
			t.Movement = clamp(t.Movement+it.Effect, 0, MaxVital)
		}
		it.Quantity--
		if it.Quantity == 0 {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			if len(t.Items) == 0 {
				t.Items = nil
			}
		}
		return used, true
	}
	return Item{}, false
}
