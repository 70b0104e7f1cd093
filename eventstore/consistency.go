package eventstore

import "context"

// ConsistencyLevel tells an engine where it may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handlers doing read-check-write
	// must use it, otherwise a stale read just produces an avoidable concurrency conflict.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Used by read models like the station listing.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key that carries the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency marks ctx so that Query reads from the primary database.
//
//	ctx = eventstore.WithStrongConsistency(ctx)
//	events, maxSeq, err := store.Query(ctx, filter)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency marks ctx so that Query may read from a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// WithDefaultConsistency sets level only if ctx does not carry a ConsistencyLevel yet.
// Read models use it so a caller that needs read-your-writes can still demand StrongConsistency.
func WithDefaultConsistency(ctx context.Context, level ConsistencyLevel) context.Context {
	if _, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return ctx
	}

	return context.WithValue(ctx, ConsistencyLevelKey, level)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
