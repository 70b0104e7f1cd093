package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/shared/shell"
	"github.com/mrcrpro/panaguas/lending/shared/shell/observable"
	"github.com/mrcrpro/panaguas/testutil/testdoubles"
)

type fakeQuery struct{}

func (fakeQuery) QueryType() string { return "FakeQuery" }

type fakeResult struct{ seq uint }

func (r fakeResult) GetSequenceNumber() uint { return r.seq }

type fakeQueryHandler struct {
	result fakeResult
	err    error
}

func (h fakeQueryHandler) Handle(_ context.Context, _ fakeQuery) (fakeResult, error) {
	return h.result, h.err
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)
	wrapper, err := observable.NewQueryWrapper[fakeQuery, fakeResult](
		fakeQueryHandler{result: fakeResult{seq: 42}},
		observable.WithQueryMetrics[fakeQuery, fakeResult](metrics),
		observable.WithQueryTracing[fakeQuery, fakeResult](tracing),
		observable.WithQueryLogging[fakeQuery, fakeResult](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), fakeQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.GetSequenceNumber())
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel(shell.LogAttrQueryType, "FakeQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusSuccess))
	assert.True(t, logger.HasDebugLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Error(t *testing.T) {
	// arrange
	errBoom := errors.New("boom")
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)
	wrapper, err := observable.NewQueryWrapper[fakeQuery, fakeResult](
		fakeQueryHandler{err: errBoom},
		observable.WithQueryMetrics[fakeQuery, fakeResult](metrics),
		observable.WithQueryContextualLogging[fakeQuery, fakeResult](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), fakeQuery{})

	// assert
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(shell.StatusError).Assert())
	assert.True(t, logger.HasErrorLog(shell.LogMsgQueryFailed))
}

func Test_QueryWrapper_Handle_Canceled(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	wrapper, err := observable.NewQueryWrapper[fakeQuery, fakeResult](
		fakeQueryHandler{err: context.Canceled},
		observable.WithQueryMetrics[fakeQuery, fakeResult](metrics),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), fakeQuery{})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCanceledMetric).Assert())
}
