package pipeline

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/psieve/pkg/sieve"
	"go.uber.org/zap"
)

// Counters of one run. Threads includes the root worker.
type Counters struct {
	Threads    uint64
	Filters    uint64
	Operations uint64
}

// Report is what a run produced. Primes come off the store most recent
// first, which is not ascending; use Sorted.
type Report struct {
	ID       uuid.UUID
	N        uint64
	Primes   []uint64
	Counters Counters
	Duration time.Duration
	// Teardown joins queue and store release errors. They do not fail the run.
	Teardown error
}

// Sorted returns the primes in ascending order.
func (r Report) Sorted() []uint64 {
	out := slices.Clone(r.Primes)
	slices.Sort(out)
	return out
}

func (r Report) Count() int {
	return len(r.Primes)
}

// completion is the single handle a run signals when its tree is done.
// Workers report fatal and teardown errors on it as they happen.
type completion struct {
	once sync.Once
	done chan struct{}

	mu       sync.Mutex
	fatal    []error
	teardown []error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

func (c *completion) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fatal = append(c.fatal, err)
}

func (c *completion) warn(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown = append(c.teardown, err)
}

func (c *completion) errs() (fatal, teardown error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.fatal...), errors.Join(c.teardown...)
}

func (c *completion) signal() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Run is one execution of the pipeline.
type Run struct {
	id     uuid.UUID
	rc     *runContext
	result sieve.Result[Report]
}

func (r *Run) ID() uuid.UUID {
	return r.id
}

// Done is closed when the whole worker tree has been joined.
func (r *Run) Done() <-chan struct{} {
	return r.rc.done.done
}

// Wait blocks until the run completes and returns its outcome. A failed or
// cancelled outcome still carries the partial report.
func (r *Run) Wait() sieve.Result[Report] {
	<-r.Done()
	return r.result
}

func (r *Run) execute(ctx context.Context) {
	rc := r.rc
	start := time.Now()

	rc.bootstrap(ctx)

	report := Report{
		ID:     r.id,
		N:      rc.n,
		Primes: rc.store.Drain(),
		Counters: Counters{
			Threads:    rc.threads.Load(),
			Filters:    rc.filters.Load(),
			Operations: rc.ops.Load(),
		},
		Duration: time.Since(start),
	}

	if err := rc.store.Destroy(); err != nil {
		rc.teardown(err)
	}

	fatal, teardown := rc.done.errs()
	report.Teardown = teardown
	rc.metrics.ObserveRun(report.Duration)

	switch {
	case ctx.Err() != nil:
		r.result = sieve.CancelWithResult(ctx.Err(), report).WithID(r.id)
	case fatal != nil:
		r.result = sieve.FailWithResult(fatal, report).WithID(r.id)
	default:
		r.result = sieve.Success(report).WithID(r.id)
	}

	rc.logger.Debug("run finished",
		zap.Int("primes", report.Count()),
		zap.Uint64("filters", report.Counters.Filters),
		zap.Duration("duration", report.Duration),
		zap.Error(fatal))

	rc.done.signal()
}
