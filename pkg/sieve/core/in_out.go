package core

import (
	"context"

	"github.com/ib-77/psieve/pkg/sieve/queue"
)

// ToQueueFromArgs puts values into q in order and closes it.
func ToQueueFromArgs[T any](ctx context.Context, q queue.Queue[T], values ...T) error {
	for _, v := range values {
		if err := q.PutContext(ctx, v); err != nil {
			return err
		}
	}
	return q.CloseContext(ctx)
}

// Sequence puts from, from+step, ... up to and including to, then closes q.
func Sequence(ctx context.Context, q queue.Queue[uint64], from, to, step uint64) error {
	for v := from; v <= to; v += step {
		if err := q.PutContext(ctx, v); err != nil {
			return err
		}
		if to-v < step {
			break
		}
	}
	return q.CloseContext(ctx)
}

// FromQueueMany collects values until end-of-stream.
func FromQueueMany[T any](ctx context.Context, q queue.Queue[T]) ([]T, error) {
	res := make([]T, 0)
	for {
		v, ok, err := q.GetContext(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			return res, nil
		}
		res = append(res, v)
	}
}
