package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ib-77/psieve/pkg/sieve"
	"github.com/ib-77/psieve/pkg/sieve/core"
	"github.com/ib-77/psieve/pkg/sieve/metrics"
	"github.com/ib-77/psieve/pkg/sieve/queue"
	"github.com/ib-77/psieve/pkg/sieve/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runContext is handed to every worker of a run.
type runContext struct {
	id    uuid.UUID
	n     uint64
	limit uint64 // ⌊√n⌋; a filter whose prime exceeds it is terminal

	store    *store.Store
	newQueue queue.Factory[uint64]
	capacity int

	threads atomic.Uint64
	filters atomic.Uint64
	ops     atomic.Uint64

	logger  *zap.Logger
	metrics *metrics.Metrics
	done    *completion
}

// bootstrap is the root worker: it records 2, seeds the odd candidates and
// joins the first filter.
func (rc *runContext) bootstrap(ctx context.Context) {
	if err := rc.store.Push(2); err != nil {
		rc.fail("store", err)
		return
	}
	if rc.n == 2 {
		return
	}

	in, err := rc.allocQueue()
	if err != nil {
		rc.fail("allocation", err)
		return
	}

	var g errgroup.Group
	rc.spawn(ctx, &g, in, 1)

	if err := core.Sequence(ctx, in, 3, rc.n, 2); err != nil && !sieve.IsCancellationError(err) {
		rc.fail("seed", err)
	}

	if err := g.Wait(); err != nil {
		rc.logger.Debug("filter tree aborted", zap.Error(err))
	}

	rc.releaseQueue(in)
}

// filter owns the first value of in. See the package doc for the two cases.
func (rc *runContext) filter(ctx context.Context, in queue.Queue[uint64], depth int) error {
	rc.metrics.ActiveFilters.Inc()
	defer rc.metrics.ActiveFilters.Dec()

	p, ok, err := in.GetContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	logger := rc.logger.With(zap.Uint64("prime", p), zap.Int("depth", depth))

	if p > rc.limit {
		logger.Debug("terminal filter")
		return rc.drain(ctx, in, p)
	}

	out, err := rc.allocQueue()
	if err != nil {
		return rc.abort(ctx, in, "allocation", err)
	}

	var children errgroup.Group
	rc.spawn(ctx, &children, out, depth+1)
	logger.Debug("filter spawned child")

	err = rc.store.Push(p)
	if err != nil {
		err = rc.abort(ctx, in, reason(err), err)
	} else {
		err = core.Locomotive(ctx, in, func(ctx context.Context, i uint64) error {
			rc.ops.Add(1)
			rc.metrics.Candidates.Inc()
			if i%p == 0 {
				return nil
			}
			return out.PutContext(ctx, i)
		}, rc.handlers(logger))
	}

	// The child must always see end-of-stream, or it would never return.
	if cerr := out.CloseContext(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if jerr := children.Wait(); jerr != nil && err == nil {
		err = jerr
	}
	rc.releaseQueue(out)

	return err
}

// drain records p and every value left in in.
func (rc *runContext) drain(ctx context.Context, in queue.Queue[uint64], p uint64) error {
	if err := rc.store.Push(p); err != nil {
		return rc.abort(ctx, in, reason(err), err)
	}

	return core.Locomotive(ctx, in, func(_ context.Context, v uint64) error {
		rc.ops.Add(1)
		rc.metrics.Candidates.Inc()
		return rc.store.Push(v)
	}, rc.handlers(rc.logger.With(zap.Uint64("prime", p))))
}

func (rc *runContext) handlers(logger *zap.Logger) core.CancellationHandlers[uint64] {
	return core.CancellationHandlers[uint64]{
		OnCancel: func(_ context.Context, _ queue.Queue[uint64], err error) {
			rc.metrics.Aborts.WithLabelValues("cancel").Inc()
			logger.Debug("filter cancelled", zap.Error(err))
		},
		OnBreak: func(ctx context.Context, v uint64, err error, input queue.Queue[uint64]) {
			if sieve.IsCancellationError(err) {
				rc.metrics.Aborts.WithLabelValues("cancel").Inc()
				return
			}
			_ = rc.abort(ctx, input, reason(err), fmt.Errorf("candidate %d: %w", v, err))
		},
	}
}

// abort records a fatal error for the subtree and consumes the rest of in
// so the producer above can finish. It returns err.
func (rc *runContext) abort(ctx context.Context, in queue.Queue[uint64], why string, err error) error {
	rc.fail(why, err)

	dropped, derr := core.Discard(ctx, in)
	rc.logger.Debug("input discarded", zap.Int("dropped", dropped), zap.Error(derr))

	return err
}

func (rc *runContext) spawn(ctx context.Context, g *errgroup.Group, in queue.Queue[uint64], depth int) {
	rc.threads.Add(1)
	rc.filters.Add(1)
	rc.metrics.ThreadsCreated.Inc()
	rc.metrics.FiltersCreated.Inc()

	g.Go(func() error {
		return rc.filter(ctx, in, depth)
	})
}

func (rc *runContext) allocQueue() (queue.Queue[uint64], error) {
	q, err := rc.newQueue(rc.capacity)
	if err != nil {
		return nil, fmt.Errorf("pipeline: queue: %w", err)
	}
	rc.metrics.LiveQueues.Inc()
	return q, nil
}

func (rc *runContext) releaseQueue(q queue.Queue[uint64]) {
	rc.metrics.LiveQueues.Dec()
	if err := q.Destroy(); err != nil {
		rc.teardown(err)
	}
}

func (rc *runContext) fail(why string, err error) {
	rc.metrics.Aborts.WithLabelValues(why).Inc()
	rc.logger.Error("worker aborted", zap.String("reason", why), zap.Error(err))
	rc.done.fail(err)
}

func (rc *runContext) teardown(err error) {
	rc.metrics.Aborts.WithLabelValues("teardown").Inc()
	rc.logger.Warn("release failed", zap.Error(err))
	rc.done.warn(err)
}

func reason(err error) string {
	switch {
	case errors.Is(err, sieve.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, sieve.ErrAllocation):
		return "allocation"
	default:
		return "store"
	}
}

func isqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
