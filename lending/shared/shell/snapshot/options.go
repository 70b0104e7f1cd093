package snapshot

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

// Option configures a QueryWrapper.
type Option[Q shell.Query, R shell.QueryResult] func(*QueryWrapper[Q, R]) error

// WithSettleWindow sets how old an event must be before it may go into a snapshot.
func WithSettleWindow[Q shell.Query, R shell.QueryResult](window time.Duration) Option[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		if window < 0 {
			return ErrInvalidSettleWindow
		}

		w.settleWindow = window

		return nil
	}
}

// WithClock replaces time.Now for the settle cutoff.
func WithClock[Q shell.Query, R shell.QueryResult](now func() time.Time) Option[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.now = now
		return nil
	}
}

// WithMetrics counts snapshot hits, misses and saves per projection type.
func WithMetrics[Q shell.Query, R shell.QueryResult](collector shell.MetricsCollector) Option[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithLogger sets a plain logger for failed loads and saves.
func WithLogger[Q shell.Query, R shell.QueryResult](logger shell.Logger) Option[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.logger = logger
		return nil
	}
}

// WithContextualLogger takes precedence over WithLogger.
func WithContextualLogger[Q shell.Query, R shell.QueryResult](logger shell.ContextualLogger) Option[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.contextualLogger = logger
		return nil
	}
}
