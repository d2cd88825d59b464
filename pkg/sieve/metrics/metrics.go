// Package metrics exposes the counters of a sieve run as Prometheus metrics.
//
// Each Metrics owns its registry, so several pipelines (and tests) can run
// in one process without colliding on the default registerer.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics of a pipeline.
type Metrics struct {
	ThreadsCreated prometheus.Counter
	FiltersCreated prometheus.Counter
	PrimesFound    prometheus.Counter
	Candidates     prometheus.Counter
	ActiveFilters  prometheus.Gauge
	LiveQueues     prometheus.Gauge
	Aborts         *prometheus.CounterVec
	RunDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a metrics collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ThreadsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sieve_threads_created_total",
			Help: "Worker goroutines started, root worker included",
		}),
		FiltersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sieve_filters_created_total",
			Help: "Filter workers started",
		}),
		PrimesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "sieve_primes_found_total",
			Help: "Primes recorded in the result store",
		}),
		Candidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "sieve_candidates_total",
			Help: "Candidates read by filter workers",
		}),
		ActiveFilters: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sieve_active_filters",
			Help: "Filter workers currently running",
		}),
		LiveQueues: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sieve_live_queues",
			Help: "Queues allocated and not yet destroyed",
		}),
		Aborts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sieve_aborts_total",
			Help: "Workers that stopped before end-of-stream",
		}, []string{"reason"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sieve_run_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRun(d time.Duration) {
	m.RunDuration.Observe(d.Seconds())
}

// Sample is one gathered value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers every metric, sorted by name. Histograms report their
// sample count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: labels(metric),
				Value:  value(mf.GetType(), metric),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func labels(metric *dto.Metric) map[string]string {
	if len(metric.GetLabel()) == 0 {
		return nil
	}
	l := make(map[string]string, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		l[pair.GetName()] = pair.GetValue()
	}
	return l
}

func value(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
