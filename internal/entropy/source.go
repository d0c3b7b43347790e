package entropy

import "math/rand"

// Source is the random source threaded through the simulation.
// *rand.Rand satisfies it; tests substitute scripted sources.
type Source interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic source for the given seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Chance reports true with probability p. p <= 0 never rolls, p >= 1 always
// succeeds without consuming randomness.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Roll returns a uniform value in [1, sides].
func Roll(src Source, sides int) int {
	if sides < 1 {
		return 0
	}
	return src.Intn(sides) + 1
}

// Between returns a uniform value in [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Pick returns a uniformly chosen element. ok is false for an empty slice.
func Pick[T any](src Source, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[src.Intn(len(items))], true
}
