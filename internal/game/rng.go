package game

import "math/rand"

// Rand is the randomness source used by every probabilistic rule.
// Injected so outcomes can be forced in tests.
type Rand interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// Intn returns a value in [0,n).
	Intn(n int) int
}

// NewRand returns a seeded math/rand source.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// IntBetween returns a uniform value in [min,max] using r.
func IntBetween(r Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// FloatBetween returns a uniform value in [min,max) using r.
func FloatBetween(r Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.Float64()*(max-min)
}

// FixedRand always returns the same values. Test helper for pinning
// price variation and probability rolls.
type FixedRand struct {
	F float64
	N int
}

func (f FixedRand) Float64() float64 { return f.F }

func (f FixedRand) Intn(n int) int {
	if f.N >= n {
		return n - 1
	}
	return f.N
}
