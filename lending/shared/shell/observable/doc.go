// Package observable wraps command and query handlers with metrics, tracing and logging,
// so the handlers themselves only contain the Query, Decide, Append workflow.
//
// Wrapping happens at wiring time:
//
//	core := requestloan.NewCommandHandler(eventStore)
//	handler, err := observable.NewCommandWrapper[requestloan.Command](
//		core,
//		observable.WithCommandMetrics[requestloan.Command](metricsCollector),
//		observable.WithCommandTracing[requestloan.Command](tracingCollector),
//		observable.WithCommandContextualLogging[requestloan.Command](logger),
//	)
//
// Business rule violations are reported with status "denied" and logged at info level,
// infrastructure failures with their own status and logged as errors.
package observable
