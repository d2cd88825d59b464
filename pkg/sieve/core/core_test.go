package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ib-77/psieve/pkg/sieve/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRing(t *testing.T, capacity int) queue.Queue[uint64] {
	t.Helper()
	q, err := queue.New[uint64](capacity)
	require.NoError(t, err)
	return q
}

func TestSequence_OddCandidates(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := newRing(t, 4)
	go func() { _ = Sequence(ctx, q, 3, 15, 2) }()

	got, err := FromQueueMany(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 5, 7, 9, 11, 13, 15}, got)
}

func TestSequence_EmptyRangeOnlyCloses(t *testing.T) {
	q := newRing(t, 2)
	require.NoError(t, Sequence(context.Background(), q, 5, 3, 2))

	_, ok := q.Get()
	assert.False(t, ok)
}

func TestSequence_StopsBeforeOverflow(t *testing.T) {
	q := newRing(t, 4)
	const top = ^uint64(0)
	require.NoError(t, Sequence(context.Background(), q, top-4, top, 2))

	got, err := FromQueueMany(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []uint64{top - 4, top - 2, top}, got)
}

func TestToQueueFromArgs_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := newRing(t, 2)
	values := []uint64{10, 20, 30, 40, 50}
	go func() { _ = ToQueueFromArgs(ctx, q, values...) }()

	got, err := FromQueueMany(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestLocomotive_FeedsUntilEndOfStream(t *testing.T) {
	q := newRing(t, 8)
	require.NoError(t, ToQueueFromArgs(context.Background(), q, 1, 2, 3))

	var seen []uint64
	err := Locomotive(context.Background(), q, func(_ context.Context, v uint64) error {
		seen = append(seen, v)
		return nil
	}, CancellationHandlers[uint64]{})

	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestLocomotive_BreakLeavesRestForHandler(t *testing.T) {
	q := newRing(t, 8)
	require.NoError(t, ToQueueFromArgs(context.Background(), q, 1, 2, 3, 4))

	boom := errors.New("boom")
	var broken uint64
	dropped := 0

	err := Locomotive(context.Background(), q, func(_ context.Context, v uint64) error {
		if v == 2 {
			return boom
		}
		return nil
	}, CancellationHandlers[uint64]{
		OnBreak: func(ctx context.Context, v uint64, err error, input queue.Queue[uint64]) {
			broken = v
			dropped, _ = Discard(ctx, input)
		},
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(2), broken)
	assert.Equal(t, 2, dropped)
}

func TestLocomotive_CancelCallsHandler(t *testing.T) {
	q := newRing(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	cancelled := false
	err := Locomotive(ctx, q, func(context.Context, uint64) error { return nil },
		CancellationHandlers[uint64]{
			OnCancel: func(context.Context, queue.Queue[uint64], error) { cancelled = true },
		})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cancelled)
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 10, GetQueueCapacity(ctx, 10))
	assert.Equal(t, "ring", GetQueueBackend(ctx, "ring"))
	assert.False(t, IsStoreGrowthEnabled(ctx, false))

	ctx = WithStoreOptions(WithQueueOptions(ctx, 3, "chan"), true)

	assert.Equal(t, 3, GetQueueCapacity(ctx, 10))
	assert.Equal(t, "chan", GetQueueBackend(ctx, "ring"))
	assert.True(t, IsStoreGrowthEnabled(ctx, false))

	// zero values keep the defaults
	ctx = WithQueueOptions(context.Background(), 0, "")
	assert.Equal(t, 10, GetQueueCapacity(ctx, 10))
	assert.Equal(t, "ring", GetQueueBackend(ctx, "ring"))
}
