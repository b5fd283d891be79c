/*
Package rng provides a small seeded-stream helper used by the DE
optimizer. The teacher's own random-sequence generators seed math/rand
directly from a caller-supplied int64 seed (see the "random" package's
DNASequence/ProteinSequence); this package keeps that same "one seed
drives one deterministic stream" idiom but wraps a private *rand.Rand
instance instead of mutating the global generator, so concurrent jobs
never share RNG state.
*/
package rng

import "math/rand"

// Stream is a deterministic source of pseudo-random draws for a single
// job. It is not safe for concurrent use by multiple goroutines directly;
// callers that need per-goroutine-independent draws should pre-draw
// everything they need from a Stream on a single goroutine first.
type Stream struct {
	r *rand.Rand
}

// New returns a Stream seeded deterministically from seed.
func New(seed int64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random number in [0,1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Intn returns a pseudo-random number in [0,n).
func (s *Stream) Intn(n int) int {
	return s.r.Intn(n)
}

// DistinctTriplet draws three distinct indices in [0,populationSize),
// none equal to exclude. Used to pick DE/rand/1's r1, r2, r3 for a
// target index.
func (s *Stream) DistinctTriplet(populationSize, exclude int) (r1, r2, r3 int) {
	draw := func(taken map[int]bool) int {
		for {
			candidate := s.r.Intn(populationSize)
			if !taken[candidate] {
				return candidate
			}
		}
	}
	taken := map[int]bool{exclude: true}
	r1 = draw(taken)
	taken[r1] = true
	r2 = draw(taken)
	taken[r2] = true
	r3 = draw(taken)
	return r1, r2, r3
}
