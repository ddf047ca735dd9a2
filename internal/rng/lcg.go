package rng

// LCG multiplier and increment (Numerical Recipes)
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// LCG is a deterministic linear-congruential generator
// Two LCGs built from the same seed produce the same sequence, which is what
// makes deals reproducible. It is not suitable for anything adversarial.
type LCG struct {
	seed  int64
	state uint32
}

// NewLCG returns a generator seeded with seed
func NewLCG(seed int64) *LCG {
	return &LCG{
		seed:  seed,
		state: uint32(seed),
	}
}

// Seed returns the seed the generator was built with
func (l *LCG) Seed() int64 {
	return l.seed
}

// Next advances the generator and returns the new state
func (l *LCG) Next() uint32 {
	l.state = l.state*lcgMultiplier + lcgIncrement
	return l.state
}

// Intn returns a number in [0, n)
func (l *LCG) Intn(n int) int {
	if n <= 0 {
		panic("rng: n must be > 0")
	}

	return int(l.Next() % uint32(n))
}
