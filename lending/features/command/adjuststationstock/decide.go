package adjuststationstock

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Decide implements the business logic to determine whether the stock of a station can be adjusted.
//
// Business Rules:
//
//	GIVEN: a registered station
//	WHEN: AdjustStationStock command is received
//	THEN: StationStockAdjusted event is generated
//	ERROR: invalid capacity unless 0 <= available units <= capacity
//	ERROR: station not found if the station is not registered
//	IDEMPOTENCY: if capacity and available units already match, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	if err := core.ValidateStock(command.Capacity, command.AvailableUnits); err != nil {
		return failure(command, err)
	}

	station := core.ProjectStationInventory(history, command.StationID)

	if !station.Registered {
		return failure(command, core.ErrStationNotFound)
	}

	if station.Capacity == command.Capacity && station.AvailableUnits == command.AvailableUnits {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildStationStockAdjusted(command.StationID, command.Capacity, command.AvailableUnits, command.OccurredAt),
	)
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingStationFailed(command.StationID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// BuildEventFilter creates the filter for all events changing the inventory of the station.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.StationRegisteredEventType,
			core.StationStatusChangedEventType,
			core.StationStockAdjustedEventType,
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		AndAnyPredicateOf(eventstore.P("StationID", command.StationID)).
		Finalize()
}
