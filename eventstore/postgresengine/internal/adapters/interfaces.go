package adapters

import "context"

// DBAdapter is what the event store needs from a database handle.
// Queries are parameterized with $n placeholders.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)

	// Exec runs query on the primary in autocommit mode.
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)

	// ExecSerializable runs query in its own SERIALIZABLE transaction on the primary and commits it.
	// Losing against a concurrent transaction surfaces as an error for which IsSerializationFailure is true.
	ExecSerializable(ctx context.Context, query string, args ...any) (DBResult, error)
}

type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DBResult interface {
	RowsAffected() (int64, error)
}
