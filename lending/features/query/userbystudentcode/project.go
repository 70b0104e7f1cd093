package userbystudentcode

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ErrInvalidUserID is returned when a stored registration carries a malformed user id.
var ErrInvalidUserID = errors.New("registration has an invalid user id")

// ProjectUser returns the earliest registration with the queried student code.
// It fails with core.ErrUserNotFound if there is none.
func ProjectUser(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) (User, error) {
	for _, event := range history {
		e, ok := event.(core.UserRegistered)
		if !ok || e.StudentCode != query.StudentCode {
			continue
		}

		userID, err := uuid.Parse(e.UserID)
		if err != nil {
			return User{}, errors.Join(ErrInvalidUserID, err)
		}

		return User{
			UserID:         userID,
			StudentCode:    e.StudentCode,
			Name:           e.Name,
			Email:          e.Email,
			RegisteredAt:   e.OccurredAt,
			SequenceNumber: maxSequenceNumber,
		}, nil
	}

	return User{}, fmt.Errorf("%s: %w", queryType, core.ErrUserNotFound)
}

// BuildEventFilter creates the filter for registrations with the student code.
func BuildEventFilter(query Query) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.UserRegisteredEventType).
		AndAnyPredicateOf(eventstore.P("StudentCode", query.StudentCode)).
		Finalize()
}
