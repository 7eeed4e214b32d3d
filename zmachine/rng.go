package zmachine

import "math/rand"

// rng wraps math/rand's source so `random` can both draw uniform values
// and be explicitly reseeded, as the `random` opcode's negative/zero
// argument forms require.
type rng struct {
	source *rand.Rand
	seed   int64
}

func newRNG(seedBytes [16]byte) *rng {
	seed := int64(0)
	zero := true
	for i, b := range seedBytes {
		seed ^= int64(b) << (8 * uint(7-i%8))
		zero = zero && b == 0
	}
	if zero {
		seed = rand.Int63()
	} else if seed == 0 {
		seed = 1
	}
	return &rng{source: rand.New(rand.NewSource(seed)), seed: seed}
}

// draw implements the `random` opcode: n>0 returns a uniform value in
// [1,n]; n==0 reseeds from a fresh source of entropy and returns 0; n<0
// reseeds deterministically from -n and returns 0.
func (r *rng) draw(n int16) uint16 {
	switch {
	case n > 0:
		return uint16(r.source.Intn(int(n)) + 1)
	case n == 0:
		r.source = rand.New(rand.NewSource(rand.Int63()))
		return 0
	default:
		r.source = rand.New(rand.NewSource(int64(-n)))
		return 0
	}
}
