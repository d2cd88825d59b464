package sieve

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of a pipeline run or of a single worker. A failed
// or cancelled Result may still carry a partial value.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
	hasResult bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		isSuccess: true,
		createdAt: time.Now().UTC(),
		hasResult: true,
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// FailWithResult keeps whatever was computed before the failure.
func FailWithResult[T any](err error, partial T) Result[T] {
	r := Fail[T](err)
	r.result = partial
	r.hasResult = true
	return r
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func CancelWithResult[T any](err error, partial T) Result[T] {
	r := Cancel[T](err)
	r.result = partial
	r.hasResult = true
	return r
}

// WithID returns a copy of r carrying id, so a run keeps one identity from
// start to outcome.
func (r Result[T]) WithID(id uuid.UUID) Result[T] {
	r.id = id
	return r
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && !r.isCancel && r.err != nil
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) IsCancelWithResult() bool {
	return r.isCancel && r.hasResult
}

func (r Result[T]) HasResult() bool {
	return r.hasResult
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) IsEmpty() bool {
	return r.err == nil && !r.isCancel && !r.isSuccess
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
