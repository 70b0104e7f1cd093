package changestationstatus

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Decide implements the business logic to determine whether the status of a station can be changed.
//
// Business Rules:
//
//	GIVEN: a registered station
//	WHEN: ChangeStationStatus command is received
//	THEN: StationStatusChanged event is generated
//	ERROR: station not found if the station is not registered
//	ERROR: invalid status for a status outside Operational, Maintenance, Unknown
//	IDEMPOTENCY: if the station already has the status, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	station := core.ProjectStationInventory(history, command.StationID)

	if !station.Registered {
		return failure(command, core.ErrStationNotFound)
	}

	if _, err := core.ParseOperationalStatus(string(command.Status)); err != nil {
		return failure(command, err)
	}

	if station.Status == command.Status {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildStationStatusChanged(command.StationID, command.Status, command.OccurredAt))
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingStationFailed(command.StationID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// BuildEventFilter creates the filter for the registration and status events of the station.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.StationRegisteredEventType,
			core.StationStatusChangedEventType,
		).
		AndAnyPredicateOf(eventstore.P("StationID", command.StationID)).
		Finalize()
}
