// Package capacity sizes the shared result store before a run starts.
package capacity

import "math"

const (
	EstimatorTight = "tight"
	EstimatorLoose = "loose"
)

// smallPi holds π(n) for n < 17, where the asymptotic bound is not yet valid.
var smallPi = [17]int{0, 0, 1, 2, 2, 3, 3, 4, 4, 4, 4, 5, 5, 6, 6, 6, 6}

// Estimate returns an upper bound on the number of primes up to n, using
// Rosser and Schoenfeld's π(x) < 1.25506·x/ln x for x > 1.
func Estimate(n uint64) int {
	if n < uint64(len(smallPi)) {
		return max(smallPi[n], 1)
	}
	x := float64(n)
	return clamp(math.Ceil(1.25506 * x / math.Log(x)))
}

// Original is the block size the first version of the program reserved,
// round(1.2·n·ln n). It overshoots by a factor of about (ln n)².
func Original(n uint64) int {
	if n < 2 {
		return 1
	}
	x := float64(n)
	return max(clamp(math.Round(1.2*x*math.Log(x))), 1)
}

// clamp converts f to int, saturating at math.MaxInt.
func clamp(f float64) int {
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}

// For resolves an estimator name; unknown names fall back to Estimate.
func For(name string) func(uint64) int {
	if name == EstimatorLoose {
		return Original
	}
	return Estimate
}
