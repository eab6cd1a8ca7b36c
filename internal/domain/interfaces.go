package domain

// RandomSource supplies uniform draws. *math/rand.Rand satisfies it, so a
// seeded source makes every tick reproducible.
type RandomSource interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
}

// Between draws uniformly from the inclusive range [lo, hi].
func Between(rng RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// RandomPrice draws a price inside r.
func RandomPrice(rng RandomSource, r PriceRange) Money {
	return Money(Between(rng, int(r.Low), int(r.High)))
}
