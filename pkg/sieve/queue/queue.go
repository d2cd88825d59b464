package queue

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Put and Close after the producer ended the stream.
	ErrClosed = errors.New("queue: closed")
	// ErrDestroyed is returned by any operation on a destroyed queue.
	ErrDestroyed = errors.New("queue: destroyed")
)

const (
	BackendRing = "ring"
	BackendChan = "chan"

	// MaxCapacity bounds a single queue; larger requests are allocation failures.
	MaxCapacity = 1 << 24
)

// Queue is a bounded FIFO with end-of-stream signalling.
type Queue[T any] interface {
	// Put enqueues v, blocking while the queue is full.
	Put(v T) error
	PutContext(ctx context.Context, v T) error
	// Close enqueues the end-of-stream marker. No Put may follow.
	Close() error
	CloseContext(ctx context.Context) error
	// Get dequeues the oldest value, blocking while the queue is empty.
	// ok is false once the end-of-stream marker has been reached.
	Get() (v T, ok bool)
	GetContext(ctx context.Context) (v T, ok bool, err error)
	// Destroy releases the storage.
	Destroy() error
	// IsEmpty and Len count ordinary values only; a pending end-of-stream
	// marker is not a value.
	IsEmpty() bool
	Len() int
	Cap() int
}

// Factory creates queues of a given capacity. The pipeline receives one so
// tests can swap the backend or inject allocation failures.
type Factory[T any] func(capacity int) (Queue[T], error)

func RingFactory[T any]() Factory[T] {
	return func(capacity int) (Queue[T], error) {
		q, err := New[T](capacity)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
}

func ChanFactory[T any]() Factory[T] {
	return func(capacity int) (Queue[T], error) {
		q, err := NewChan[T](capacity)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
}

// ForBackend resolves a backend name ("ring" or "chan") to a Factory.
func ForBackend[T any](backend string) (Factory[T], error) {
	switch backend {
	case "", BackendRing:
		return RingFactory[T](), nil
	case BackendChan:
		return ChanFactory[T](), nil
	default:
		return nil, fmt.Errorf("queue: unknown backend %q", backend)
	}
}

// slot is a queue cell. last marks the end-of-stream entry.
type slot[T any] struct {
	value T
	last  bool
}
