package capacity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func countPrimes(limit uint64) int {
	if limit < 2 {
		return 0
	}
	composite := make([]bool, limit+1)
	count := 0
	for i := uint64(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		count++
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return count
}

func TestEstimate_BoundsPrimeCount(t *testing.T) {
	for n := uint64(0); n <= 5000; n++ {
		assert.GreaterOrEqual(t, Estimate(n), max(countPrimes(n), 1), "n=%d", n)
	}
	for _, n := range []uint64{10_000, 100_000, 1_000_000} {
		assert.GreaterOrEqual(t, Estimate(n), countPrimes(n), "n=%d", n)
	}
}

func TestEstimate_StaysClose(t *testing.T) {
	n := uint64(1_000_000)
	// π(10^6) = 78498
	assert.Less(t, Estimate(n), 2*78498)
}

func TestOriginal(t *testing.T) {
	assert.Equal(t, 1, Original(0))
	assert.Equal(t, 1, Original(1))
	assert.Equal(t, 28, Original(10))
	assert.GreaterOrEqual(t, Original(1000), Estimate(1000))
}

func TestFor(t *testing.T) {
	assert.Equal(t, Original(100), For(EstimatorLoose)(100))
	assert.Equal(t, Estimate(100), For(EstimatorTight)(100))
	assert.Equal(t, Estimate(100), For("unknown")(100))
}

func TestEstimatorsSaturate(t *testing.T) {
	n := ^uint64(0)
	assert.Positive(t, Estimate(n))
	assert.Equal(t, math.MaxInt, Original(n))
	assert.Equal(t, math.MaxInt, clamp(1e30))
	assert.Equal(t, 42, clamp(42))
}
