// Package random provides the seedable pseudo-random source used by every
// synthetic fallback path.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is a goroutine-safe wrapper around a PCG generator.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a source. A zero seed derives one from the clock.
func New(seed uint64) *Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a value in [0,n). n <= 0 yields 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Between returns an integer uniformly drawn from [lo,hi].
func (s *Source) Between(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.IntN(hi-lo+1)
}
