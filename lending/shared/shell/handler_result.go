package shell

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// HandlerResult is the outcome of a command handler execution.
// It reports idempotency as a business outcome and the retry metadata for observability,
// without coupling the handler to a metrics implementation.
type HandlerResult struct {
	// Idempotent is true if the command required no state change.
	Idempotent bool

	// RetryAttempts is the total number of attempts made, 1 without retries.
	RetryAttempts int

	// TotalRetryDelay only counts the backoff waits, not the execution time.
	TotalRetryDelay time.Duration

	// LastErrorType is one of "none", "concurrency_conflict", "context_canceled",
	// "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true if all attempts failed with a retryable error.
	RetriesExhausted bool

	// Appended is the event the successful attempt committed, nil if the handler does not report it.
	Appended core.DomainEvent
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, false)
}

// NewIdempotentResult creates a HandlerResult for a command that required no state change.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, true)
}

// NewErrorResult creates a HandlerResult for a failed command, keeping the retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, false)
}

// WithAppended returns a copy of r that reports event as committed.
func (r HandlerResult) WithAppended(event core.DomainEvent) HandlerResult {
	r.Appended = event

	return r
}

func resultFrom(retryMetrics RetryMetrics, idempotent bool) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
