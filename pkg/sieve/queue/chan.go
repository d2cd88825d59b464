package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/ib-77/psieve/pkg/sieve"
)

// Chan is a Queue on a buffered channel. Close closes the channel instead
// of writing a marker, so it never blocks.
type Chan[T any] struct {
	ch chan T

	// Put holds the read lock while sending so Close cannot close the
	// channel under an in-flight send.
	mu        sync.RWMutex
	closed    bool
	drained   bool
	destroyed bool
	state     sync.Mutex
}

func NewChan[T any](capacity int) (*Chan[T], error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("queue: capacity %d out of range [1, %d]: %w",
			capacity, MaxCapacity, sieve.ErrAllocation)
	}
	return &Chan[T]{ch: make(chan T, capacity)}, nil
}

func (q *Chan[T]) Put(v T) error {
	return q.PutContext(context.Background(), v)
}

func (q *Chan[T]) PutContext(ctx context.Context, v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	switch {
	case q.destroyed:
		return ErrDestroyed
	case q.closed:
		return ErrClosed
	}

	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Chan[T]) Close() error {
	return q.CloseContext(context.Background())
}

func (q *Chan[T]) CloseContext(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.destroyed:
		return ErrDestroyed
	case q.closed:
		return ErrClosed
	}

	q.closed = true
	close(q.ch)
	return nil
}

func (q *Chan[T]) Get() (T, bool) {
	v, ok, _ := q.GetContext(context.Background())
	return v, ok
}

func (q *Chan[T]) GetContext(ctx context.Context) (T, bool, error) {
	var zero T

	q.state.Lock()
	if q.destroyed {
		q.state.Unlock()
		return zero, false, ErrDestroyed
	}
	if q.drained {
		q.state.Unlock()
		return zero, false, nil
	}
	q.state.Unlock()

	select {
	case v, ok := <-q.ch:
		if !ok {
			q.state.Lock()
			q.drained = true
			q.state.Unlock()
			return zero, false, nil
		}
		return v, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Destroy drops the channel. Undelivered values are reported as ErrTeardown.
func (q *Chan[T]) Destroy() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Lock()
	defer q.state.Unlock()

	if q.destroyed {
		return fmt.Errorf("queue: destroy twice: %w", sieve.ErrTeardown)
	}

	pending := len(q.ch)
	q.destroyed = true

	if pending > 0 {
		return fmt.Errorf("queue: %d undelivered values: %w", pending, sieve.ErrTeardown)
	}
	return nil
}

func (q *Chan[T]) IsEmpty() bool {
	return len(q.ch) == 0
}

func (q *Chan[T]) Len() int {
	return len(q.ch)
}

func (q *Chan[T]) Cap() int {
	return cap(q.ch)
}

var _ Queue[int] = (*Chan[int])(nil)
