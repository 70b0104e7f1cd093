package stationlisting

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

// Handle projects the listing from a replica if one is configured, unless ctx already asks for a consistency level.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Stations, error) {
	ctx = eventstore.WithDefaultConsistency(ctx, eventstore.EventualConsistency)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter())
	if err != nil {
		return Stations{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return Stations{}, err
	}

	return ProjectStations(history, maxSequenceNumber), nil
}
