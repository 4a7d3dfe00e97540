package core

import "math/rand/v2"

// RNG wraps a seeded PCG source so runs replay exactly for a given seed.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Pick returns a random index in [0, n). n must be positive.
func (r *RNG) Pick(n int) int {
	return r.r.IntN(n)
}

// Source exposes the underlying rand.Rand for packages that take one directly.
func (r *RNG) Source() *rand.Rand { return r.r }
