// Package metrics implements the eventstore metrics interfaces on top of Prometheus
// and exposes the /metrics handler.
//
// Metric names are chosen by the instrumented code. Each name becomes one vector whose
// label names are fixed by its first observation; later observations fill missing labels
// with "" and drop unknown ones.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrcrpro/panaguas/eventstore"
)

// Collector records durations as histograms, counters as counters and values as gauges.
type Collector struct {
	registerer prometheus.Registerer
	namespace  string

	mu         sync.Mutex
	histograms map[string]*vector[*prometheus.HistogramVec]
	counters   map[string]*vector[*prometheus.CounterVec]
	gauges     map[string]*vector[*prometheus.GaugeVec]
}

type vector[V any] struct {
	vec        V
	labelNames []string
}

// NewCollector creates a Collector registering its vectors with reg. A non-empty namespace prefixes every metric.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	return &Collector{
		registerer: reg,
		namespace:  namespace,
		histograms: make(map[string]*vector[*prometheus.HistogramVec]),
		counters:   make(map[string]*vector[*prometheus.CounterVec]),
		gauges:     make(map[string]*vector[*prometheus.GaugeVec]),
	}
}

// RecordDuration observes duration in seconds.
func (c *Collector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	v, ok := c.histograms[metric]
	if !ok {
		names := labelNamesOf(labels)
		v = &vector[*prometheus.HistogramVec]{
			vec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: c.namespace,
				Name:      metric,
				Help:      "Duration of " + metric,
				Buckets:   prometheus.DefBuckets,
			}, names),
			labelNames: names,
		}
		v.vec = registerOrExisting(c.registerer, v.vec)
		c.histograms[metric] = v
	}
	c.mu.Unlock()

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (c *Collector) IncrementCounter(metric string, labels map[string]string) {
	c.mu.Lock()
	v, ok := c.counters[metric]
	if !ok {
		names := labelNamesOf(labels)
		v = &vector[*prometheus.CounterVec]{
			vec: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: c.namespace,
				Name:      metric,
				Help:      "Count of " + metric,
			}, names),
			labelNames: names,
		}
		v.vec = registerOrExisting(c.registerer, v.vec)
		c.counters[metric] = v
	}
	c.mu.Unlock()

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Inc()
}

// RecordValue sets the gauge to value.
func (c *Collector) RecordValue(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	v, ok := c.gauges[metric]
	if !ok {
		names := labelNamesOf(labels)
		v = &vector[*prometheus.GaugeVec]{
			vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: c.namespace,
				Name:      metric,
				Help:      "Value of " + metric,
			}, names),
			labelNames: names,
		}
		v.vec = registerOrExisting(c.registerer, v.vec)
		c.gauges[metric] = v
	}
	c.mu.Unlock()

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Set(value)
}

// RecordDurationContext ignores ctx. Prometheus has no use for it.
func (c *Collector) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	c.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext ignores ctx.
func (c *Collector) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	c.IncrementCounter(metric, labels)
}

// RecordValueContext ignores ctx.
func (c *Collector) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	c.RecordValue(metric, value, labels)
}

// registerOrExisting registers vec, or returns the vector already registered under the same name.
// Any other registration error is a programming error and panics like MustRegister.
func registerOrExisting[V prometheus.Collector](reg prometheus.Registerer, vec V) V {
	err := reg.Register(vec)
	if err == nil {
		return vec
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(V); ok {
			return existing
		}
	}

	panic(err)
}

func labelNamesOf(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func labelValuesOf(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ eventstore.MetricsCollector           = (*Collector)(nil)
	_ eventstore.ContextualMetricsCollector = (*Collector)(nil)
)
