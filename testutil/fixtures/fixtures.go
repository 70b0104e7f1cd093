package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/eventstore/memengine"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

// QueriesAndAppendsEvents is the part of an event store the fixtures need.
type QueriesAndAppendsEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// NewMemoryEventStore returns an empty in-memory event store.
func NewMemoryEventStore(t *testing.T) *memengine.EventStore {
	t.Helper()

	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	return es
}

// GivenEventsAppended appends events to es in the given order.
func GivenEventsAppended(t *testing.T, es QueriesAndAppendsEvents, events ...core.DomainEvent) {
	t.Helper()

	ctx := context.Background()
	filter := eventstore.BuildEventFilter().MatchingAnyEvent()

	for _, event := range events {
		storableEvent, err := shell.StorableEventWithEmptyMetadataFrom(event)
		require.NoError(t, err)

		_, maxSequenceNumber, err := es.Query(ctx, filter)
		require.NoError(t, err)

		require.NoError(t, es.Append(ctx, filter, maxSequenceNumber, storableEvent))
	}
}

// AllDomainEvents reads back the complete history of es.
func AllDomainEvents(t *testing.T, es QueriesAndAppendsEvents) core.DomainEvents {
	t.Helper()

	storableEvents, _, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)

	history, err := shell.DomainEventsFrom(storableEvents)
	require.NoError(t, err)

	return history
}

// CountEvents returns how many events of eventType es holds.
func CountEvents(t *testing.T, es QueriesAndAppendsEvents, eventType string) int {
	t.Helper()

	count := 0
	for _, event := range AllDomainEvents(t, es) {
		if event.EventType() == eventType {
			count++
		}
	}

	return count
}

// StationRegistered is a registered, operational station.
func StationRegistered(stationID string, capacity int, availableUnits int, at time.Time) core.DomainEvent {
	return core.BuildStationRegistered(stationID, "Station "+stationID, "Campus", 4.6381, -74.0840, capacity, availableUnits, at)
}

// UserRegistered is a registered user with tier.
func UserRegistered(userID uuid.UUID, studentCode string, tier core.DonationTier, at time.Time) core.DomainEvent {
	return core.BuildUserRegistered(userID, studentCode, "Student "+studentCode, studentCode+"@campus.example.edu", tier, at)
}

// LoanOpened is an open loan of userID at stationID.
func LoanOpened(loanID string, userID uuid.UUID, stationID string, tier core.DonationTier, at time.Time) core.DomainEvent {
	return core.OpenLoan(loanID, userID.String(), stationID, tier, "", at)
}

// LoanClosed closes the given open loan at returnStationID with the fine of its tier.
func LoanClosed(t *testing.T, opened core.DomainEvent, returnStationID string, returnedAt time.Time) core.DomainEvent {
	t.Helper()

	loanOpened, ok := opened.(core.LoanOpened)
	require.True(t, ok)

	closed, err := core.LoanRecordFrom(loanOpened).Close(returnedAt, returnStationID, true)
	require.NoError(t, err)

	return closed
}
