package core

import "math/rand/v2"

// RNG is a thin wrapper around math/rand/v2 for deterministic seeding.
// Simulations receive it explicitly so a run can be replayed from its seed.
type RNG struct {
	seed int64
	src  *rand.PCG
	r    *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	src := rand.NewPCG(uint64(seed), 0)
	return &RNG{seed: seed, src: src, r: rand.New(src)}
}

// Seed reports the seed the generator was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Float32 returns a random float in [0, 1).
func (r *RNG) Float32() float32 { return r.r.Float32() }

// Float64 returns a random float in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// MarshalBinary captures the generator position.
func (r *RNG) MarshalBinary() ([]byte, error) { return r.src.MarshalBinary() }

// UnmarshalBinary rewinds the generator to a captured position.
func (r *RNG) UnmarshalBinary(data []byte) error { return r.src.UnmarshalBinary(data) }
