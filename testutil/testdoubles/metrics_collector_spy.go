package testdoubles

import (
	"maps"
	"sync"
	"time"

	"github.com/mrcrpro/panaguas/eventstore"
)

// MetricsCollectorSpy captures metrics calls for testing.
type MetricsCollectorSpy struct {
	durationRecords []SpyMetricRecord
	counterRecords  []SpyMetricRecord
	valueRecords    []SpyMetricRecord
	mu              sync.Mutex
	recordCalls     bool
}

// SpyMetricRecord represents one recorded metric call. Duration and Value are set depending on the kind.
type SpyMetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy. Set recordCalls to true to capture calls.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(&s.durationRecords, SpyMetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(&s.counterRecords, SpyMetricRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(&s.valueRecords, SpyMetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) record(records *[]SpyMetricRecord, record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	*records = append(*records, record)
}

// CounterRecords returns a copy of the counter records.
func (s *MetricsCollectorSpy) CounterRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.counterRecords...)
}

// DurationRecords returns a copy of the duration records.
func (s *MetricsCollectorSpy) DurationRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.durationRecords...)
}

// ValueRecords returns a copy of the value records.
func (s *MetricsCollectorSpy) ValueRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.valueRecords...)
}

// HasCounterRecordForMetric starts a fluent chain over the counter records of metric.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return newMetricRecordMatcher(s.CounterRecords(), metric)
}

// HasDurationRecordForMetric starts a fluent chain over the duration records of metric.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return newMetricRecordMatcher(s.DurationRecords(), metric)
}

// HasValueRecordForMetric starts a fluent chain over the value records of metric.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	return newMetricRecordMatcher(s.ValueRecords(), metric)
}

// CountCounterRecordsForMetric returns how often metric was incremented.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	count := 0

	for _, record := range s.CounterRecords() {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// MetricRecordMatcher narrows the candidate records label by label.
// Assert is true if at least one record matches all conditions.
type MetricRecordMatcher struct {
	candidates []SpyMetricRecord
}

func newMetricRecordMatcher(records []SpyMetricRecord, metric string) *MetricRecordMatcher {
	m := &MetricRecordMatcher{}

	for _, record := range records {
		if record.Metric == metric {
			m.candidates = append(m.candidates, record)
		}
	}

	return m
}

// WithLabel keeps the records where key has value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	kept := m.candidates[:0:0]

	for _, record := range m.candidates {
		if record.Labels[key] == value {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// WithStatus keeps the records with the given status label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

var _ eventstore.MetricsCollector = (*MetricsCollectorSpy)(nil)
