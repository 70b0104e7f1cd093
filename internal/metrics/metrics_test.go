package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/internal/metrics"
)

func Test_Collector_IncrementCounter_CountsPerLabelSet(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, "panaguas")

	// act
	collector.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"command_type": "RequestLoan", "status": "success"})
	collector.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"command_type": "RequestLoan", "status": "success"})
	collector.IncrementCounterContext(context.Background(), "commandhandler_handle_calls_total", map[string]string{"command_type": "ReturnLoan", "status": "error"})

	// assert
	assert.Equal(t, 2, countSeries(t, reg, "panaguas_commandhandler_handle_calls_total"))
}

func Test_Collector_RecordDuration_ObservesSeconds(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, "")

	// act
	collector.RecordDuration("queryhandler_handle_duration_seconds", 250*time.Millisecond, map[string]string{"query_type": "StationListing"})

	// assert
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	histogram := families[0].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), histogram.GetSampleCount())
	assert.InDelta(t, 0.25, histogram.GetSampleSum(), 0.0001)
}

func Test_Collector_RecordValue_DropsUnknownLabels(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, "")
	collector.RecordValue("notification_queue_length", 3, map[string]string{"queue": "email"})

	// act
	collector.RecordValue("notification_queue_length", 5, map[string]string{"queue": "email", "extra": "ignored"})

	// assert
	assert.Equal(t, 1, countSeries(t, reg, "notification_queue_length"))
}

func Test_Collector_SharesRegistryWithSecondCollector(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	first := metrics.NewCollector(reg, "")
	second := metrics.NewCollector(reg, "")

	// act
	first.IncrementCounter("notification_dispatched_total", map[string]string{"kind": "LoanOpened"})
	second.IncrementCounter("notification_dispatched_total", map[string]string{"kind": "LoanOpened"})

	// assert
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.InDelta(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue(), 0.0001)
}

func Test_Handler_ExposesMetrics(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg, "panaguas").IncrementCounter("loans_total", map[string]string{})
	server := httptest.NewServer(metrics.Handler(reg))
	defer server.Close()

	// act
	resp, err := http.Get(server.URL)

	// assert
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "panaguas_loans_total 1")
}

func countSeries(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			return len(family.GetMetric())
		}
	}

	return 0
}
