// Package random centralizes deterministic random generation.
//
// math/rand/v2.Rand is not safe for concurrent use. Workers must not share a
// generator; use Derive to create independent streams from one run seed.
package random

import "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed generator seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent generator for the given stream of a run.
// The same (seed, stream) pair always yields the same sequence.
func Derive(seed int64, stream uint64) *rand.Rand {
	return New(DeriveSeed(seed, stream))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new seed.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + goldenRatio64)
	x += goldenRatio64
	return int64(mix(x))
}

// mix is the SplitMix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
