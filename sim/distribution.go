package sim

import (
	"math"
	"math/rand"
)

// clamp bounds val to [lo, hi].
func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// normal draws from N(mean, stdDev).
func normal(rng *rand.Rand, mean, stdDev float64) float64 {
	return rng.NormFloat64()*stdDev + mean
}

// clampedNormal draws from N(mean, stdDev) and clamps to [lo, hi].
func clampedNormal(rng *rand.Rand, mean, stdDev, lo, hi float64) float64 {
	return clamp(normal(rng, mean, stdDev), lo, hi)
}

// uniform draws from U[lo, lo+width).
func uniform(rng *rand.Rand, lo, width float64) float64 {
	return lo + rng.Float64()*width
}

// pick returns a when cond holds, otherwise b.
func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// harmonicMean returns 2ab/(a+b).
// Panics when a+b is not positive: callers clamp both inputs to a positive
// floor, so a zero denominator means an upstream clamp was removed.
func harmonicMean(a, b float64) float64 {
	sum := a + b
	if !(sum > 0) {
		panic("harmonicMean: non-positive denominator; inputs must be clamped to a positive floor")
	}
	return 2 * a * b / sum
}
