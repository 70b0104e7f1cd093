package loansbyuser

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

// QueryHandler runs Query -> Unmarshal -> Project.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle lists the loans of the user.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoansByUser, error) {
	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter(query))
	if err != nil {
		return LoansByUser{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return LoansByUser{}, err
	}

	return ProjectLoansByUser(history, query, maxSequenceNumber), nil
}
