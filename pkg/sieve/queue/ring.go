package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/ib-77/psieve/pkg/sieve"
	"golang.org/x/sync/semaphore"
)

// Ring is a circular buffer with blocking admission.
//
// The buffer has capacity+1 cells; at most capacity of them are live at
// any time, the admission tokens enforce it. The mutex only guards index
// mutation, the tokens do the waiting.
type Ring[T any] struct {
	v     []slot[T]
	size  int // len(v), indices wrap modulo size
	first int
	last  int

	empty *semaphore.Weighted
	full  *semaphore.Weighted
	mu    sync.Mutex

	capacity  int
	live      int
	closed    bool
	marked    bool // end-of-stream cell written
	drained   bool
	destroyed bool
}

// New allocates a ring queue holding at most capacity values.
func New[T any](capacity int) (*Ring[T], error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("queue: capacity %d out of range [1, %d]: %w",
			capacity, MaxCapacity, sieve.ErrAllocation)
	}

	q := &Ring[T]{
		v:        make([]slot[T], capacity+1),
		size:     capacity + 1,
		capacity: capacity,
		empty:    semaphore.NewWeighted(int64(capacity)),
		full:     semaphore.NewWeighted(int64(capacity)),
	}

	// full starts with no tokens available
	if !q.full.TryAcquire(int64(capacity)) {
		return nil, fmt.Errorf("queue: draining full-slot tokens: %w", sieve.ErrSyncInit)
	}

	return q, nil
}

func (q *Ring[T]) Put(v T) error {
	return q.PutContext(context.Background(), v)
}

func (q *Ring[T]) PutContext(ctx context.Context, v T) error {
	q.mu.Lock()
	switch {
	case q.destroyed:
		q.mu.Unlock()
		return ErrDestroyed
	case q.closed:
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()

	return q.enqueue(ctx, slot[T]{value: v})
}

func (q *Ring[T]) Close() error {
	return q.CloseContext(context.Background())
}

func (q *Ring[T]) CloseContext(ctx context.Context) error {
	q.mu.Lock()
	switch {
	case q.destroyed:
		q.mu.Unlock()
		return ErrDestroyed
	case q.closed:
		q.mu.Unlock()
		return ErrClosed
	}
	q.closed = true
	q.mu.Unlock()

	if err := q.enqueue(ctx, slot[T]{last: true}); err != nil {
		q.mu.Lock()
		q.closed = false
		q.mu.Unlock()
		return err
	}
	return nil
}

func (q *Ring[T]) enqueue(ctx context.Context, s slot[T]) error {
	if err := q.empty.Acquire(ctx, 1); err != nil {
		return err
	}

	q.mu.Lock()
	if q.destroyed {
		q.mu.Unlock()
		q.empty.Release(1)
		return ErrDestroyed
	}

	q.v[q.last] = s
	q.last = (q.last + 1) % q.size
	q.live++
	if s.last {
		q.marked = true
	}

	q.mu.Unlock()
	q.full.Release(1)

	return nil
}

func (q *Ring[T]) Get() (T, bool) {
	v, ok, _ := q.GetContext(context.Background())
	return v, ok
}

func (q *Ring[T]) GetContext(ctx context.Context) (T, bool, error) {
	var zero T

	q.mu.Lock()
	switch {
	case q.destroyed:
		q.mu.Unlock()
		return zero, false, ErrDestroyed
	case q.drained:
		q.mu.Unlock()
		return zero, false, nil
	}
	q.mu.Unlock()

	if err := q.full.Acquire(ctx, 1); err != nil {
		return zero, false, err
	}

	q.mu.Lock()
	if q.destroyed {
		q.mu.Unlock()
		return zero, false, ErrDestroyed
	}

	s := q.v[q.first]
	q.v[q.first] = slot[T]{}
	q.first = (q.first + 1) % q.size
	q.live--
	if s.last {
		q.drained = true
	}

	q.mu.Unlock()
	q.empty.Release(1)

	if s.last {
		return zero, false, nil
	}
	return s.value, true, nil
}

// Destroy releases the buffer. It reports ErrTeardown when the queue was
// already destroyed or still held undelivered values; the buffer is
// released in both cases.
func (q *Ring[T]) Destroy() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.destroyed {
		return fmt.Errorf("queue: destroy twice: %w", sieve.ErrTeardown)
	}

	pending := q.values()

	q.destroyed = true
	q.v = nil
	q.live = 0

	if pending > 0 {
		return fmt.Errorf("queue: %d undelivered values: %w", pending, sieve.ErrTeardown)
	}
	return nil
}

// IsEmpty is a non-blocking snapshot; it may be stale by the time it returns.
func (q *Ring[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.values() == 0
}

func (q *Ring[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.values()
}

// values counts live cells minus a pending end-of-stream marker.
// Callers hold mu.
func (q *Ring[T]) values() int {
	if q.marked && !q.drained {
		return q.live - 1
	}
	return q.live
}

func (q *Ring[T]) Cap() int {
	return q.capacity
}

var _ Queue[int] = (*Ring[int])(nil)
