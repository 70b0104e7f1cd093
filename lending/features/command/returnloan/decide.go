package returnloan

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// state represents the current state projected from the event history.
type state struct {
	loan       core.LoanRecord
	loanExists bool
	station    core.StationInventory
}

// Decide determines whether the loan can be closed at the return station.
//
// Business Rules:
//
//	GIVEN: an open loan of the user and a registered return station
//	WHEN: ReturnLoan command is received
//	THEN: LoanClosed event is generated with the fine for the tier the loan was opened with
//	ERROR: no active loan if the loan does not exist or belongs to another user
//	ERROR: station not found if the return station is not registered
//	IDEMPOTENCY: if the loan is already closed, no event is generated
//	CAPACITY: a full return station keeps its count, the event records UnitRestocked=false
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command)

	if !s.loanExists || s.loan.UserID != command.UserID.String() {
		return failure(command, core.ErrNoActiveLoan)
	}

	if !s.loan.IsOpen() {
		return core.IdempotentDecision()
	}

	restocked, err := s.station.Increment()
	if err != nil {
		return failure(command, err)
	}

	closed, err := s.loan.Close(command.OccurredAt, command.StationID, restocked)
	if err != nil {
		return failure(command, err)
	}

	return core.SuccessDecision(closed)
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildReturningLoanFailed(
		command.UserID.String(),
		command.LoanID,
		command.StationID,
		reason.Error(),
		command.OccurredAt,
	)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// project builds the current state by replaying all events from the history.
func project(history core.DomainEvents, command Command) state {
	s := state{
		station: core.ProjectStationInventory(history, command.StationID),
	}

	s.loan, s.loanExists = core.FindLoan(history, command.LoanID)

	return s
}

// BuildEventFilter creates the filter for the loan, the user's loans and the return station's inventory.
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
		AndAnyPredicateOf(
			eventstore.P("UserID", command.UserID.String()),
			eventstore.P("StationID", command.StationID),
			eventstore.P("LoanID", command.LoanID),
		).
		Finalize()
}
