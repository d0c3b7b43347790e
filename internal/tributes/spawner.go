// Tribute spawning. Draws fixed attributes once, assigns districts
// round-robin and asks a NameSource for display names.
package tributes

import (
	"math/rand"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/entropy"
)

// NameSource supplies display names for new tributes. The engine treats
// the result as an opaque string.
type NameSource interface {
	Name() string
}

// Spawner creates tributes for a game.
type Spawner struct {
	rng     *rand.Rand
	names   NameSource
	nextID  ID
	created int
}

// NewSpawner creates a spawner with the given seed. A nil NameSource falls
// back to the built-in name pools.
func NewSpawner(seed int64, names NameSource) *Spawner {
	rng := entropy.New(seed + 300)
	if names == nil {
		names = &poolNames{rng: rng}
	}
	return &Spawner{
		rng:    rng,
		names:  names,
		nextID: 1,
	}
}

// SetNextID sets the next tribute ID and the round-robin position, used
// when restoring a roster from storage.
func (s *Spawner) SetNextID(id ID, created int) {
	s.nextID = id
	s.created = created
}

// Spawn creates one tribute with full vitals, status Healthy and no area.
func (s *Spawner) Spawn() *Tribute {
	id := s.nextID
	s.nextID++
	district := s.created%Districts + 1
	s.created++

	return &Tribute{
		ID:       id,
		Name:     s.names.Name(),
		District: district,
		Attributes: Attributes{
			Health:       MaxVital,
			Sanity:       MaxVital,
			Movement:     MaxVital,
			Strength:     entropy.Between(s.rng, 1, MaxPhysical),
			Defense:      entropy.Between(s.rng, 1, MaxPhysical),
			Dexterity:    entropy.Between(s.rng, 1, MaxAttribute),
			Bravery:      entropy.Between(s.rng, 1, MaxAttribute),
			Loyalty:      entropy.Between(s.rng, 1, MaxAttribute),
			Speed:        entropy.Between(s.rng, 1, MaxAttribute),
			Intelligence: entropy.Between(s.rng, 1, MaxAttribute),
			Persuasion:   entropy.Between(s.rng, 1, MaxAttribute),
			Luck:         entropy.Between(s.rng, 1, MaxAttribute),
		},
		Area:   arena.Nowhere,
		Status: Status{Kind: Healthy},
	}
}

// SpawnN creates count tributes.
func (s *Spawner) SpawnN(count int) []*Tribute {
	out := make([]*Tribute, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Spawn())
	}
	return out
}

var firstNames = []string{
	"Arlo", "Briar", "Cato", "Delphine", "Ember", "Fennel", "Glimmer", "Haymitch",
	"Iris", "Jasper", "Kestrel", "Linnea", "Marvel", "Nettle", "Orrin", "Posy",
	"Quill", "Rue", "Sable", "Thresh", "Umber", "Vesper", "Wren", "Yarrow",
	"Zinnia", "Bristel", "Clove", "Dune", "Fox", "Lark",
}

var lastNames = []string{
	"Ashford", "Bellweather", "Coalridge", "Dunmore", "Everdeen", "Farrow",
	"Greywater", "Hawthorne", "Ironside", "Juniper", "Kettle", "Loam",
	"Mellark", "Northcote", "Oakhurst", "Pike", "Quarry", "Reed",
	"Stonebrook", "Thistle", "Underhill", "Vale", "Whitlock", "Yew",
}

// poolNames draws "First Last" names and avoids repeating one within a game.
type poolNames struct {
	rng  *rand.Rand
	used map[string]bool
}

func (p *poolNames) Name() string {
	if p.used == nil {
		p.used = make(map[string]bool)
	}
	var name string
	for tries := 0; tries < 16; tries++ {
		first, _ := entropy.Pick(p.rng, firstNames)
		last, _ := entropy.Pick(p.rng, lastNames)
		name = first + " " + last
		if !p.used[name] {
			break
		}
	}
	p.used[name] = true
	return name
}
