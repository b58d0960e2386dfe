// Package chance centralises every random decision the engine makes so a save
// can be replayed from a seed.
package chance

import (
	"cmp"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"time"
)

var ErrNoWeight = errors.New("weights must sum to a positive value")

// Source is a seeded random source safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a source seeded with seed, or with the clock when seed is 0.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Fork returns a new source seeded from s. Work that runs concurrently takes
// one fork each, drawn in a fixed order, so the draws stay reproducible.
func (s *Source) Fork() *Source {
	s.mu.Lock()
	seed := s.rng.Int63()
	s.mu.Unlock()
	if seed == 0 {
		seed = 1
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

func (s *Source) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Roll succeeds with probability p.
func (s *Source) Roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float() < p
}

// IntBetween returns a value in [lo, hi].
func (s *Source) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *Source) Int64Between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Int63n(hi-lo+1)
}

// FloatBetween returns a value in [lo, hi).
func (s *Source) FloatBetween(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

// Norm returns a normally distributed value.
func (s *Source) Norm(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mean + s.rng.NormFloat64()*stddev
}

// Shuffle returns a uniformly permuted copy of vs.
func Shuffle[T any](s *Source, vs []T) []T {
	out := slices.Clone(vs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Pick returns a uniformly chosen element. vs must not be empty.
func Pick[T any](s *Source, vs []T) T {
	return vs[s.IntBetween(0, len(vs)-1)]
}

// Weighted picks a key with probability proportional to its weight.
// Non-positive weights are never picked.
func Weighted[K cmp.Ordered](s *Source, weights map[K]float64) (K, error) {
	var zero K
	keys := make([]K, 0, len(weights))
	total := 0.0
	for k, w := range weights {
		if w > 0 {
			keys = append(keys, k)
			total += w
		}
	}
	if total <= 0 {
		return zero, ErrNoWeight
	}
	// map order is random; sort so a seed replays the same way
	slices.Sort(keys)

	roll := s.Float() * total
	for _, k := range keys {
		roll -= weights[k]
		if roll < 0 {
			return k, nil
		}
	}
	return keys[len(keys)-1], nil
}
