package payfine

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Decide implements the business logic to determine whether a fine payment can be recorded.
//
// Business Rules:
//
//	GIVEN: a registered user with a fine balance
//	WHEN: PayFine command is received
//	THEN: FinePaid event is generated
//	ERROR: user not found if the user is not registered
//	ERROR: invalid amount if the amount is not positive
//	ERROR: overpayment if the amount exceeds the balance
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	user := core.ProjectUserLoanState(history, command.UserID.String())

	if !user.Registered {
		return failure(command, core.ErrUserNotFound)
	}

	if err := user.SettleFine(command.Amount); err != nil {
		return failure(command, err)
	}

	return core.SuccessDecision(core.BuildFinePaid(command.UserID, command.Amount, command.OccurredAt))
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingUserFailed(command.UserID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// BuildEventFilter creates the filter for all events changing the fine balance of the user.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.UserRegisteredEventType,
			core.FinePaidEventType,
			core.LoanClosedEventType,
		).
		AndAnyPredicateOf(eventstore.P("UserID", command.UserID.String())).
		Finalize()
}
