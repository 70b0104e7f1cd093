package duesoonloans

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

// OpenLoansHandler runs Query -> Unmarshal -> Project for the OpenLoans state.
type OpenLoansHandler struct {
	eventStore EventStore
}

// NewOpenLoansHandler creates a new OpenLoansHandler.
func NewOpenLoansHandler(eventStore EventStore) OpenLoansHandler {
	return OpenLoansHandler{eventStore: eventStore}
}

// Handle replays all loan events.
func (h OpenLoansHandler) Handle(ctx context.Context, query Query) (OpenLoans, error) {
	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter())
	if err != nil {
		return OpenLoans{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return OpenLoans{}, err
	}

	return ProjectOpenLoans(history, query, maxSequenceNumber, OpenLoans{}), nil
}

// QueryHandler selects the due-soon loans from the OpenLoans state.
type QueryHandler struct {
	openLoans shell.QueryHandler[Query, OpenLoans]
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithOpenLoans replaces the handler that provides the OpenLoans state, e.g. with a snapshot-aware one.
func WithOpenLoans(openLoans shell.QueryHandler[Query, OpenLoans]) Option {
	return func(h *QueryHandler) {
		h.openLoans = openLoans
	}
}

// NewQueryHandler creates a new QueryHandler that replays from eventStore unless WithOpenLoans is given.
func NewQueryHandler(eventStore EventStore, opts ...Option) QueryHandler {
	h := QueryHandler{openLoans: NewOpenLoansHandler(eventStore)}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// Handle lists the loans due soon, reading from a replica unless ctx already asks for a consistency level.
func (h QueryHandler) Handle(ctx context.Context, query Query) (DueSoonLoans, error) {
	ctx = eventstore.WithDefaultConsistency(ctx, eventstore.EventualConsistency)

	open, err := h.openLoans.Handle(ctx, query)
	if err != nil {
		return DueSoonLoans{}, err
	}

	return SelectDueSoon(open, query), nil
}
