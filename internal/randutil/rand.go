// Package randutil builds seeded math/rand/v2 generators. Deck shuffles
// and bot strategies take their randomness through here so a fixed seed
// replays the exact same hand.
package randutil

import rand "math/rand/v2"

// New returns a generator derived deterministically from seed. The PCG
// source wants two 64-bit words, so the seed is stretched with the
// splitmix64 finaliser, chaining the first word into the second.
func New(seed int64) *rand.Rand {
	hi := finalize(uint64(seed))
	lo := finalize(hi)
	return rand.New(rand.NewPCG(hi, lo))
}

func finalize(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
