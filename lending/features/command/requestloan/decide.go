package requestloan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// state represents the current state projected from the event history.
type state struct {
	user       core.UserLoanState
	station    core.StationInventory
	loan       core.LoanRecord
	loanExists bool
}

// Decide determines whether the user may take an umbrella from the station.
//
// Business Rules (checked in this order):
//
//	GIVEN: a registered user and a station
//	WHEN: RequestLoan command is received
//	THEN: LoanOpened event is generated, due time fixed by the user's current tier
//	ERROR: user not found if the user is not registered
//	ERROR: station not found if the station is not registered
//	ERROR: already loaned if the user holds an open loan
//	ERROR: fine owed if the user's fine balance is positive
//	ERROR: out of stock if the station has no units
//	ERROR: station not operational if the station is in maintenance or unknown
//	IDEMPOTENCY: if the loan with this LoanID is still open, no event is generated;
//	             if it was closed meanwhile, the request is denied as already processed
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command)

	if s.loanExists {
		if s.loan.IsOpen() {
			return core.IdempotentDecision()
		}

		return failure(command, core.ErrRequestAlreadyProcessed)
	}

	if !s.user.Registered {
		return failure(command, core.ErrUserNotFound)
	}

	if !s.station.Registered {
		return failure(command, core.ErrStationNotFound)
	}

	if err := s.user.MarkLoaned(command.LoanID.String()); err != nil {
		return failure(command, err)
	}

	if s.user.HasOutstandingFine() {
		return failure(command, core.ErrFineOwed)
	}

	if err := s.station.Decrement(); err != nil {
		return failure(command, err)
	}

	return core.SuccessDecision(
		core.OpenLoan(
			command.LoanID.String(),
			command.UserID.String(),
			command.StationID,
			s.user.Tier,
			command.RequestID,
			command.OccurredAt,
		),
	)
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildRequestingLoanFailed(command.UserID.String(), command.StationID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// project builds the current state by replaying all events from the history.
func project(history core.DomainEvents, command Command) state {
	s := state{
		user:    core.ProjectUserLoanState(history, command.UserID.String()),
		station: core.ProjectStationInventory(history, command.StationID),
	}

	s.loan, s.loanExists = core.FindLoan(history, command.LoanID.String())

	return s
}

// BuildEventFilter creates the filter for all events of the user OR the station
// that are relevant for handing out an umbrella.
func BuildEventFilter(userID uuid.UUID, stationID core.StationIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.StationRegisteredEventType,
			core.StationStatusChangedEventType,
			core.StationStockAdjustedEventType,
			core.UserRegisteredEventType,
			core.DonationTierChangedEventType,
			core.FinePaidEventType,
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		AndAnyPredicateOf(
			eventstore.P("UserID", userID.String()),
			eventstore.P("StationID", stationID),
		).
		Finalize()
}
