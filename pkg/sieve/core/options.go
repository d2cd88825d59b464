package core

import "context"

type OptionKey string

const (
	QueueOptionKey OptionKey = "queue_options"
	StoreOptionKey OptionKey = "store_options"
)

type MaxLimitOption struct {
	Value int
}

type QueueOptions struct {
	Capacity MaxLimitOption
	Backend  string
}

type StoreOptions struct {
	Growth bool
}

// WithQueueOptions overrides, for one run, the capacity and backend of every
// queue the pipeline creates.
func WithQueueOptions(ctx context.Context, capacity int, backend string) context.Context {
	return context.WithValue(ctx, QueueOptionKey, QueueOptions{
		Capacity: MaxLimitOption{Value: capacity},
		Backend:  backend,
	})
}

func WithStoreOptions(ctx context.Context, growth bool) context.Context {
	return context.WithValue(ctx, StoreOptionKey, StoreOptions{Growth: growth})
}

func GetQueueCapacity(ctx context.Context, defaultCapacity int) int {
	options, ok := ctx.Value(QueueOptionKey).(QueueOptions)
	if ok && options.Capacity.Value > 0 {
		return options.Capacity.Value
	}
	return defaultCapacity
}

func GetQueueBackend(ctx context.Context, defaultBackend string) string {
	options, ok := ctx.Value(QueueOptionKey).(QueueOptions)
	if ok && options.Backend != "" {
		return options.Backend
	}
	return defaultBackend
}

func IsStoreGrowthEnabled(ctx context.Context, defaultGrowth bool) bool {
	options, ok := ctx.Value(StoreOptionKey).(StoreOptions)
	if ok {
		return options.Growth
	}
	return defaultGrowth
}
