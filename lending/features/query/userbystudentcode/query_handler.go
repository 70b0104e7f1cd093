package userbystudentcode

import (
	"context"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

// EventStore defines the interface needed by the QueryHandler for event store operations.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// QueryHandler runs Query -> Unmarshal -> Project. Observability is added by observable.QueryWrapper.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle resolves the student code. Registrations are never changed, so an eventually
// consistent read is enough: a user that is not visible yet is denied and can retry.
func (h QueryHandler) Handle(ctx context.Context, query Query) (User, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter(query))
	if err != nil {
		return User{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return User{}, err
	}

	return ProjectUser(history, query, maxSequenceNumber)
}
