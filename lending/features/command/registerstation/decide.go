package registerstation

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// state represents the current state projected from the event history.
type state struct {
	registration core.StationRegistered
	exists       bool
}

// Decide implements the business logic to determine whether a station can be registered.
//
// Business Rules:
//
//	GIVEN: a station id that is not registered yet
//	WHEN: RegisterStation command is received
//	THEN: StationRegistered event is generated
//	ERROR: invalid capacity unless 0 <= available units <= capacity
//	ERROR: station already exists if the id is registered with different details
//	IDEMPOTENCY: registering the same station with the same details again generates no event
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	if s.exists {
		if sameRegistration(s.registration, command) {
			return core.IdempotentDecision()
		}

		return failure(command, core.ErrStationAlreadyExists)
	}

	if err := core.ValidateStock(command.Capacity, command.AvailableUnits); err != nil {
		return failure(command, err)
	}

	return core.SuccessDecision(
		core.BuildStationRegistered(
			command.StationID,
			command.Name,
			command.Location,
			command.Latitude,
			command.Longitude,
			command.Capacity,
			command.AvailableUnits,
			command.OccurredAt,
		),
	)
}

func sameRegistration(e core.StationRegistered, command Command) bool {
	return e.Name == command.Name &&
		e.Location == command.Location &&
		e.Latitude == command.Latitude &&
		e.Longitude == command.Longitude &&
		e.Capacity == command.Capacity &&
		e.AvailableUnits == command.AvailableUnits
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingStationFailed(command.StationID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

func project(history core.DomainEvents) state {
	var s state

	for _, event := range history {
		if e, ok := event.(core.StationRegistered); ok && !s.exists {
			s.registration = e
			s.exists = true
		}
	}

	return s
}

// BuildEventFilter creates the filter for the registration of the station.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.StationRegisteredEventType).
		AndAnyPredicateOf(eventstore.P("StationID", command.StationID)).
		Finalize()
}
