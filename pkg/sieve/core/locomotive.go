package core

import (
	"context"

	"github.com/ib-77/psieve/pkg/sieve"
	"github.com/ib-77/psieve/pkg/sieve/queue"
)

type CancellationHandlers[T any] struct {
	// OnCancel runs when ctx ends while waiting for input.
	OnCancel func(ctx context.Context, input queue.Queue[T], err error)
	// OnBreak runs when the engine rejects a value; the rest of the input
	// has not been read yet.
	OnBreak func(ctx context.Context, v T, err error, input queue.Queue[T])
}

// Locomotive feeds every value of input to engine until end-of-stream.
// It returns nil once the end-of-stream marker has been consumed, or the
// first error from the queue or the engine.
func Locomotive[T any](ctx context.Context, input queue.Queue[T],
	engine func(ctx context.Context, v T) error,
	handlers CancellationHandlers[T]) error {

	for {
		v, ok, err := input.GetContext(ctx)
		if err != nil {
			if sieve.IsCancellationError(err) && handlers.OnCancel != nil {
				handlers.OnCancel(ctx, input, err)
			}
			return err
		}
		if !ok {
			return nil
		}

		if err := engine(ctx, v); err != nil {
			if handlers.OnBreak != nil {
				handlers.OnBreak(ctx, v, err, input)
			}
			return err
		}
	}
}

// Discard consumes input up to end-of-stream so its producer is never left
// blocked on a full queue. It returns the number of values dropped.
func Discard[T any](ctx context.Context, input queue.Queue[T]) (int, error) {
	dropped := 0
	for {
		_, ok, err := input.GetContext(ctx)
		if err != nil {
			return dropped, err
		}
		if !ok {
			return dropped, nil
		}
		dropped++
	}
}
