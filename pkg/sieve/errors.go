package sieve

import (
	"context"
	"errors"
	"reflect"
)

// Error kinds shared by the queue, the store and the pipeline. Callers match
// them with errors.Is; producers wrap them with context.
var (
	// ErrAllocation reports that backing storage could not be allocated.
	ErrAllocation = errors.New("allocation failure")
	// ErrSyncInit reports that a lock or admission primitive could not be set up.
	ErrSyncInit = errors.New("sync primitive init failure")
	// ErrTeardown reports that a resource could not be released cleanly.
	// Memory is released anyway.
	ErrTeardown = errors.New("resource teardown failure")
	// ErrCapacityExceeded reports an overflow of the shared result store.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidBound rejects an upper bound below 2.
	ErrInvalidBound = errors.New("upper bound must be at least 2")
)

func IsNil(i interface{}) bool {
	if i == nil || (reflect.ValueOf(i).Kind() == reflect.Ptr && reflect.ValueOf(i).IsNil()) {
		return true
	}
	return false
}

// GetErrors splits an errors.Join result back into its parts.
func GetErrors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
