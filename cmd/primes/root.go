package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ib-77/psieve/pkg/sieve"
	"github.com/ib-77/psieve/pkg/sieve/config"
	"github.com/ib-77/psieve/pkg/sieve/core"
	"github.com/ib-77/psieve/pkg/sieve/logging"
	"github.com/ib-77/psieve/pkg/sieve/metrics"
	"github.com/ib-77/psieve/pkg/sieve/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	capacity    int
	backend     string
	logLevel    string
	development bool
	metrics     bool
	grow        bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "primes <n>",
		Short: "Find every prime up to n with a concurrent sieve",
		Long: `A multi-threaded Sieve of Eratosthenes.

Each prime found gets its own worker, fed by a bounded queue from the worker
of the previous prime. Workers drop the multiples of their prime and pass the
rest on. All primes are collected, sorted and printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseBound(args[0])
			if err != nil {
				_ = cmd.Usage()
				return err
			}
			return run(cmd, out, n, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.capacity, "capacity", 0, "queue capacity (default from SIEVE_QUEUE_CAPACITY)")
	flags.StringVar(&opts.backend, "backend", "", "queue backend: ring or chan")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.development, "dev", false, "human readable logs")
	flags.BoolVar(&opts.metrics, "metrics", false, "print the run metrics")
	flags.BoolVar(&opts.grow, "grow", false, "let the result store grow instead of failing when full")

	return cmd
}

func parseBound(arg string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bound %q: %w", arg, err)
	}
	if n < 2 {
		return 0, fmt.Errorf("no primes up to %d: %w", n, sieve.ErrInvalidBound)
	}
	return n, nil
}

func run(cmd *cobra.Command, out io.Writer, n uint64, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("capacity") {
		cfg.Pipeline.QueueCapacity = opts.capacity
	}
	if flags.Changed("backend") {
		cfg.Pipeline.QueueBackend = opts.backend
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = opts.development
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()
	p := pipeline.New(
		pipeline.WithConfig(cfg.Pipeline),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
	)

	ctx := cmd.Context()
	if flags.Changed("grow") {
		ctx = core.WithStoreOptions(ctx, opts.grow)
	}

	logger.Info("processing", zap.Uint64("n", n))

	report, err := p.Compute(ctx, n)
	if errors.Is(err, sieve.ErrAllocation) && report.N == 0 {
		return fmt.Errorf("too much memory needed for n = %d: %w", n, err)
	}
	if err != nil {
		logger.Error("run failed", zap.Error(err), zap.Int("partial", report.Count()))
		return err
	}
	for _, terr := range sieve.GetErrors(report.Teardown) {
		logger.Warn("resource not released cleanly", zap.Error(terr))
	}

	printReport(out, report)

	if opts.metrics {
		return printMetrics(out, m)
	}
	return nil
}

func printReport(out io.Writer, report pipeline.Report) {
	primes := report.Sorted()

	words := make([]string, len(primes))
	for i, p := range primes {
		words[i] = strconv.FormatUint(p, 10)
	}

	fmt.Fprintln(out, "Result:")
	fmt.Fprintln(out, strings.Join(words, " "))

	if len(primes) == 1 {
		fmt.Fprintln(out, "Found 1 prime number.")
	} else {
		fmt.Fprintf(out, "Found %d prime numbers.\n", len(primes))
	}
	fmt.Fprintf(out, "Threads created: %d\tfilters: %d\n",
		report.Counters.Threads, report.Counters.Filters)
}

func printMetrics(out io.Writer, m *metrics.Metrics) error {
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Metrics:")
	for _, s := range samples {
		name := s.Name
		for k, v := range s.Labels {
			name += fmt.Sprintf("{%s=%q}", k, v)
		}
		fmt.Fprintf(out, "  %s %g\n", name, s.Value)
	}
	return nil
}
