package shell

import (
	"context"

	"github.com/mrcrpro/panaguas/eventstore"
)

// QueriesEvents is the read side of the event store that query handlers need.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// Query is implemented by every query type. QueryType labels logs, metrics and spans.
type Query interface {
	QueryType() string
}

// QueryResult is implemented by every projection.
// GetSequenceNumber returns the highest sequence number the projection was built from.
type QueryResult interface {
	GetSequenceNumber() uint
}

// QueryHandler runs one query: fetch events, map them, project.
type QueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Command is implemented by every command type. CommandType labels logs, metrics and spans.
type Command interface {
	CommandType() string
}

// CommandHandler runs one command: query, decide, append, retried on concurrency conflicts.
// The HandlerResult carries the business outcome (idempotency) and the retry metadata.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}
