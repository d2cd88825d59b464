package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ib-77/psieve/pkg/sieve"
	"github.com/ib-77/psieve/pkg/sieve/capacity"
	"github.com/ib-77/psieve/pkg/sieve/config"
	"github.com/ib-77/psieve/pkg/sieve/core"
	"github.com/ib-77/psieve/pkg/sieve/metrics"
	"github.com/ib-77/psieve/pkg/sieve/queue"
	"github.com/ib-77/psieve/pkg/sieve/store"
	"go.uber.org/zap"
)

const DefaultQueueCapacity = 10

type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithQueueFactory replaces the backend lookup; every queue of a run comes
// from factory.
func WithQueueFactory(factory queue.Factory[uint64]) Option {
	return func(p *Pipeline) {
		p.factory = factory
	}
}

func WithQueueCapacity(capacity int) Option {
	return func(p *Pipeline) {
		p.capacity = capacity
	}
}

func WithBackend(backend string) Option {
	return func(p *Pipeline) {
		p.backend = backend
	}
}

// WithEstimator sets the function sizing the result store from N.
func WithEstimator(estimate func(n uint64) int) Option {
	return func(p *Pipeline) {
		if estimate != nil {
			p.estimate = estimate
		}
	}
}

func WithStoreGrowth(growth bool) Option {
	return func(p *Pipeline) {
		p.growth = growth
	}
}

func WithConfig(cfg config.PipelineConfig) Option {
	return func(p *Pipeline) {
		p.capacity = cfg.QueueCapacity
		p.backend = cfg.QueueBackend
		p.growth = cfg.StoreGrowth
		p.estimate = capacity.For(cfg.Estimator)
	}
}

// Pipeline holds the settings shared by its runs. It is safe to start
// several runs from one Pipeline.
type Pipeline struct {
	logger   *zap.Logger
	metrics  *metrics.Metrics
	factory  queue.Factory[uint64]
	backend  string
	capacity int
	estimate func(n uint64) int
	growth   bool
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   zap.NewNop(),
		metrics:  metrics.New(),
		backend:  queue.BackendRing,
		capacity: DefaultQueueCapacity,
		estimate: capacity.Estimate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Start validates n, sizes the store and launches the root worker. The
// returned Run completes once every worker has been joined.
func (p *Pipeline) Start(ctx context.Context, n uint64) (*Run, error) {
	if n < 2 {
		return nil, fmt.Errorf("pipeline: n = %d: %w", n, sieve.ErrInvalidBound)
	}

	queueCapacity := core.GetQueueCapacity(ctx, p.capacity)
	factory := p.factory
	if factory == nil {
		var err error
		factory, err = queue.ForBackend[uint64](core.GetQueueBackend(ctx, p.backend))
		if err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	logger := p.logger.With(zap.String("run", id.String()), zap.Uint64("n", n))

	storeOpts := []store.Option{store.WithOnPush(func(uint64) { p.metrics.PrimesFound.Inc() })}
	if core.IsStoreGrowthEnabled(ctx, p.growth) {
		storeOpts = append(storeOpts, store.WithGrowth())
	}
	results, err := store.New(p.estimate(n), storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: result store: %w", err)
	}

	rc := &runContext{
		id:       id,
		n:        n,
		limit:    isqrt(n),
		store:    results,
		newQueue: factory,
		capacity: queueCapacity,
		logger:   logger,
		metrics:  p.metrics,
		done:     newCompletion(),
	}

	run := &Run{id: id, rc: rc}
	rc.threads.Add(1)
	p.metrics.ThreadsCreated.Inc()

	logger.Debug("run started",
		zap.Int("store_capacity", results.Cap()),
		zap.Int("queue_capacity", queueCapacity))

	go run.execute(ctx)

	return run, nil
}

// Compute runs the sieve for n and waits for it. On failure the report holds
// whatever primes were recorded before the abort.
func (p *Pipeline) Compute(ctx context.Context, n uint64) (Report, error) {
	run, err := p.Start(ctx, n)
	if err != nil {
		return Report{}, err
	}
	res := run.Wait()
	return res.Result(), res.Err()
}

// Compute runs the sieve for n with default settings.
func Compute(ctx context.Context, n uint64) (Report, error) {
	return New().Compute(ctx, n)
}
