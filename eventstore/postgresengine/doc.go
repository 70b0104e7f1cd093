// Package postgresengine provides a PostgreSQL implementation of the event store.
//
// Events live in a single table (see migrations/). Query selects by event type and by
// jsonb containment on the payload. Append inserts with a CTE that re-checks the max
// sequence number of the filtered stream inside a SERIALIZABLE transaction. A writer that
// finds the stream moved on inserts zero rows, and of two writers racing on an overlapping
// stream Postgres aborts one with a serialization failure. Both cases make Append
// return eventstore.ErrConcurrencyConflict, which the command handlers retry.
//
// The engine accepts a pgxpool.Pool, a sql.DB (lib/pq) or a sqlx.DB:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(collector),
//	)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
//
// Reads go to the replica pool only when the context asks for eventstore.EventualConsistency.
//
// A second table keeps one snapshot per projection type and filter hash. SaveSnapshot never
// replaces a snapshot with one of a lower sequence number.
package postgresengine
