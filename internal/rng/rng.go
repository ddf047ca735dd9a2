package rng

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seed returns a positive seed drawn from the generator
// Zero is never returned so that callers can use it to mean "pick one for me"
func Seed(g Generator) int64 {
	return int64(g.Intn(maxSeed)) + 1
}

const maxSeed = 1<<31 - 1
