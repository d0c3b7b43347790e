package tributes

import "github.com/talgya/tribute-arena/internal/arena"

// scripted replays fixed values. Exhausted queues return 0 for Intn and
// 0.999 for Float64, so chance rolls fail unless p is 1.
type scripted struct {
	ints   []int
	floats []float64
}

func (s *scripted) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scripted) Shuffle(n int, swap func(i, j int)) {}

func newTribute(id ID, district int) *Tribute {
	return &Tribute{
		ID:       id,
		Name:     "tribute",
		District: district,
		Attributes: Attributes{
			Health:       100,
			Sanity:       100,
			Movement:     100,
			Strength:     10,
			Defense:      10,
			Dexterity:    10,
			Bravery:      50,
			Loyalty:      50,
			Speed:        50,
			Intelligence: 50,
			Persuasion:   50,
			Luck:         50,
		},
		Area:   arena.Cornucopia,
		Status: Status{Kind: Healthy},
	}
}
