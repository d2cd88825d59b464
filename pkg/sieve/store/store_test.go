package store

import (
	"sort"
	"sync"
	"testing"

	"github.com/ib-77/psieve/pkg/sieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PopIsLIFO(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	for _, v := range []uint64{2, 3, 5, 7} {
		require.NoError(t, s.Push(v))
	}

	for _, want := range []uint64{7, 5, 3, 2} {
		v, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	_, err = s.Pop()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStore_TotalIsPushesMinusPops(t *testing.T) {
	tests := []struct {
		pushes int
		pops   int
	}{
		{0, 0},
		{1, 0},
		{1, 1},
		{5, 2},
		{10, 10},
	}

	for _, tt := range tests {
		s, err := New(16)
		require.NoError(t, err)

		for i := 0; i < tt.pushes; i++ {
			require.NoError(t, s.Push(uint64(i+1)))
		}
		for i := 0; i < tt.pops; i++ {
			_, err := s.Pop()
			require.NoError(t, err)
		}

		assert.Equal(t, tt.pushes-tt.pops, s.Total(), "pushes=%d pops=%d", tt.pushes, tt.pops)
		assert.Equal(t, tt.pushes-tt.pops, s.Len())
	}
}

func TestStore_CursorLivesInFirstSlot(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	require.NoError(t, s.Push(11))
	require.NoError(t, s.Push(13))

	assert.Equal(t, []uint64{2, 11, 13, 0, 0}, s.md)
	assert.Equal(t, []uint64{13, 11}, s.Drain())
	assert.Equal(t, []uint64{0, 0, 0, 0, 0}, s.md)
}

func TestStore_CapacityExceeded(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	require.NoError(t, s.Push(2))
	require.NoError(t, s.Push(3))

	err = s.Push(5)
	assert.ErrorIs(t, err, sieve.ErrCapacityExceeded)
	assert.Equal(t, 2, s.Total())
	assert.Equal(t, []uint64{3, 2}, s.Drain())
}

func TestStore_GrowthDoublesBlock(t *testing.T) {
	s, err := New(1, WithGrowth())
	require.NoError(t, err)

	for i := uint64(1); i <= 100; i++ {
		require.NoError(t, s.Push(i))
	}
	assert.Equal(t, 100, s.Total())
	assert.GreaterOrEqual(t, s.Cap(), 100)

	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), v)
}

func TestStore_ConcurrentPushes(t *testing.T) {
	const workers, each = 8, 500
	s, err := New(workers * each)
	require.NoError(t, err)

	var pushed sync.WaitGroup
	var mu sync.Mutex
	seen := 0
	s.onPush = func(uint64) {
		mu.Lock()
		seen++
		mu.Unlock()
	}

	for w := 0; w < workers; w++ {
		pushed.Add(1)
		go func(base uint64) {
			defer pushed.Done()
			for i := uint64(0); i < each; i++ {
				assert.NoError(t, s.Push(base+i))
			}
		}(uint64(w * each))
	}
	pushed.Wait()

	assert.Equal(t, workers*each, s.Total())
	assert.Equal(t, workers*each, seen)

	values := s.Drain()
	assert.Zero(t, s.Total())
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		require.Equal(t, uint64(i), v)
	}
}

func TestStore_Destroy(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	require.NoError(t, s.Push(2))

	require.NoError(t, s.Destroy())
	assert.ErrorIs(t, s.Destroy(), sieve.ErrTeardown)
	assert.ErrorIs(t, s.Push(3), ErrDestroyed)

	_, err = s.Pop()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.Nil(t, s.Drain())
	assert.Zero(t, s.Cap())
}

func TestNew_RejectsEmptyBlock(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, sieve.ErrAllocation)
}

func TestNew_RejectsHugeBlock(t *testing.T) {
	for _, capacity := range []int{MaxCapacity + 1, 1 << 62} {
		s, err := New(capacity)
		assert.ErrorIs(t, err, sieve.ErrAllocation, "capacity=%d", capacity)
		assert.Nil(t, s)
	}
}
