package userprofile

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ProjectProfile returns the profile of the queried user or core.ErrUserNotFound.
func ProjectProfile(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) (Profile, error) {
	state := core.ProjectUserLoanState(history, query.UserID.String())
	if !state.Registered {
		return Profile{}, fmt.Errorf("%s: %w", queryType, core.ErrUserNotFound)
	}

	return Profile{UserLoanState: state, SequenceNumber: maxSequenceNumber}, nil
}

// BuildEventFilter creates the filter for every event that changes the user's state.
func BuildEventFilter(query Query) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.UserRegisteredEventType,
			core.DonationTierChangedEventType,
			core.FinePaidEventType,
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		AndAnyPredicateOf(eventstore.P("UserID", query.UserID.String())).
		Finalize()
}
