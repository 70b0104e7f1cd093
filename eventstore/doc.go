// Package eventstore holds the engine-independent building blocks of the event store:
// filters, storable events, the consistency context and the observability interfaces.
//
// An engine offers two operations:
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	err = store.Append(ctx, filter, maxSeq, event)
//
// The filter describes a "dynamic event stream", e.g. all loan events of one user plus all
// inventory events of one station:
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(core.LoanOpenedEventType, core.LoanClosedEventType).
//		AndAnyPredicateOf(eventstore.P("UserID", userID), eventstore.P("StationID", stationID)).
//		Finalize()
//
// Append only succeeds if no event matching the same filter was appended after the query,
// otherwise it returns ErrConcurrencyConflict. That makes every decision atomic for exactly
// the entities the filter names.
package eventstore
