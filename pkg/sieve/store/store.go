// Package store implements the result store shared by every sieve worker.
//
// The store is a fixed block of slots. Slot 0 holds the write cursor, slots
// 1..cursor hold the recorded values in push order. Every operation runs in a
// single critical section, so concurrent pushes from different workers
// interleave in an arbitrary order; readers that need ascending output sort.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ib-77/psieve/pkg/sieve"
)

var (
	ErrEmpty     = errors.New("store: empty")
	ErrDestroyed = errors.New("store: destroyed")
)

// MaxCapacity bounds the block, growth included. Larger requests are
// allocation failures.
const MaxCapacity = 1 << 28

type Option func(*Store)

// WithGrowth lets the store double its block instead of failing with
// ErrCapacityExceeded.
func WithGrowth() Option {
	return func(s *Store) {
		s.growable = true
	}
}

// WithOnPush registers a callback run after each successful push, outside
// the lock.
func WithOnPush(fn func(v uint64)) Option {
	return func(s *Store) {
		s.onPush = fn
	}
}

type Store struct {
	mu        sync.Mutex
	md        []uint64
	total     int
	growable  bool
	destroyed bool
	onPush    func(v uint64)
}

// New allocates a store for capacity values.
func New(capacity int, opts ...Option) (*Store, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("store: capacity %d out of range [1, %d]: %w",
			capacity, MaxCapacity, sieve.ErrAllocation)
	}

	s := &Store{md: make([]uint64, capacity+1)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Push records v. When the block is full and growth is off, nothing is
// written and ErrCapacityExceeded is returned.
func (s *Store) Push(v uint64) error {
	s.mu.Lock()

	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}

	index := s.md[0] + 1
	if index >= uint64(len(s.md)) {
		if !s.growable || len(s.md)-1 >= MaxCapacity {
			s.mu.Unlock()
			return fmt.Errorf("store: push %d beyond %d slots: %w",
				v, len(s.md)-1, sieve.ErrCapacityExceeded)
		}
		grown := make([]uint64, min(2*len(s.md), MaxCapacity+1))
		copy(grown, s.md)
		s.md = grown
	}

	s.md[index] = v
	s.md[0] = index
	s.total++

	onPush := s.onPush
	s.mu.Unlock()

	if onPush != nil {
		onPush(v)
	}
	return nil
}

// Pop removes and returns the most recently pushed value.
func (s *Store) Pop() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return 0, ErrDestroyed
	}

	index := s.md[0]
	if index == 0 {
		return 0, ErrEmpty
	}

	v := s.md[index]
	s.md[index] = 0
	s.md[0] = index - 1
	s.total--

	return v, nil
}

// Drain pops every value, most recent first.
func (s *Store) Drain() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return nil
	}

	n := s.md[0]
	out := make([]uint64, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, s.md[i])
		s.md[i] = 0
	}
	s.md[0] = 0
	s.total -= int(n)

	return out
}

// Total is pushes minus pops.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return 0
	}
	return int(s.md[0])
}

// Cap is the number of value slots, the cursor slot excluded.
func (s *Store) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return 0
	}
	return len(s.md) - 1
}

func (s *Store) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return fmt.Errorf("store: destroy twice: %w", sieve.ErrTeardown)
	}
	s.destroyed = true
	s.md = nil
	return nil
}
