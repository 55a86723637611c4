package lottery

import (
	"math/rand/v2"
	"sync"
)

// RandomSource permutes the waiting pool before winners are taken from its
// head. Implementations must produce every permutation with equal probability.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
}

type runtimeSource struct{}

// NewRuntimeSource uses the runtime's auto-seeded generator.
func NewRuntimeSource() RandomSource {
	return runtimeSource{}
}

func (runtimeSource) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a reproducible source. Two sources built from the
// same seed shuffle identically.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}
