package mirage

import "math/rand/v2"

// Noise is the randomness behind dithering. Uniform returns a value in
// [0, 1). Implementations need not be safe for concurrent use; the
// compositor gives every row its own source.
type Noise interface {
	Uniform() float64
}

// NewNoise returns a seeded noise source. Equal seeds yield the same
// stream, which keeps dithered runs reproducible.
func NewNoise(seed1, seed2 uint64) Noise {
	return pcgNoise{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

type pcgNoise struct {
	rng *rand.Rand
}

func (n pcgNoise) Uniform() float64 {
	return n.rng.Float64()
}
