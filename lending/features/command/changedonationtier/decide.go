package changedonationtier

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Decide implements the business logic to determine whether the tier of a user can be changed.
//
// Business Rules:
//
//	GIVEN: a registered user
//	WHEN: ChangeDonationTier command is received
//	THEN: DonationTierChanged event is generated
//	ERROR: user not found if the user is not registered
//	IDEMPOTENCY: if the user already has the tier, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	user := core.ProjectUserLoanState(history, command.UserID.String())

	if !user.Registered {
		return failure(command, core.ErrUserNotFound)
	}

	if user.Tier == command.Tier {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildDonationTierChanged(command.UserID, command.Tier, command.OccurredAt))
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingUserFailed(command.UserID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

// BuildEventFilter creates the filter for the registration and tier changes of the user.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.UserRegisteredEventType,
			core.DonationTierChangedEventType,
		).
		AndAnyPredicateOf(eventstore.P("UserID", command.UserID.String())).
		Finalize()
}
