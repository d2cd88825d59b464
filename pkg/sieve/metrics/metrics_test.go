package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.FiltersCreated.Add(3)
	b.FiltersCreated.Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.FiltersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.FiltersCreated))
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.ThreadsCreated.Add(4)
	m.PrimesFound.Add(10)
	m.Aborts.WithLabelValues("allocation").Inc()
	m.ObserveRun(5 * time.Millisecond)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	byName := make(map[string]Sample)
	for _, s := range samples {
		byName[s.Name] = s
	}

	assert.Equal(t, 4.0, byName["sieve_threads_created_total"].Value)
	assert.Equal(t, 10.0, byName["sieve_primes_found_total"].Value)
	assert.Equal(t, 1.0, byName["sieve_run_duration_seconds"].Value)
	assert.Equal(t, map[string]string{"reason": "allocation"}, byName["sieve_aborts_total"].Labels)

	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}
