package sieve

import "time"

type ResultProvider[T any] interface {
	// Result returns the computed value, possibly partial
	Result() T
	// CreatedAt time creation (UTC)
	CreatedAt() time.Time
}

// WithError defines an interface for outcomes that can carry an error
type WithError[T any] interface {
	ResultProvider[T]
	// Err returns the error if the run failed
	Err() error
	// IsSuccess returns true if the run completed without error
	IsSuccess() bool
}

// WithCancel extends WithError with cancellation support
type WithCancel[T any] interface {
	WithError[T]
	// IsCancel returns true if the run was cancelled through its context
	IsCancel() bool
}

var _ WithCancel[int] = Result[int]{}
