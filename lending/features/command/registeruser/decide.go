package registeruser

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

type state struct {
	user        core.UserRegistered
	userExists  bool
	codeIsTaken bool
}

// Decide implements the business logic to determine whether a user can be registered.
//
// Business Rules:
//
//	GIVEN: a user id and a student code that are both unused
//	WHEN: RegisterUser command is received
//	THEN: UserRegistered event is generated
//	ERROR: user already registered if the id is registered with another student code
//	ERROR: student code taken if another user registered the code
//	IDEMPOTENCY: registering the same id with the same student code again generates no event
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command)

	if s.userExists {
		if s.user.StudentCode == command.StudentCode {
			return core.IdempotentDecision()
		}

		return failure(command, core.ErrUserAlreadyRegistered)
	}

	if s.codeIsTaken {
		return failure(command, core.ErrStudentCodeTaken)
	}

	return core.SuccessDecision(
		core.BuildUserRegistered(
			command.UserID,
			command.StudentCode,
			command.Name,
			command.Email,
			command.Tier,
			command.OccurredAt,
		),
	)
}

func failure(command Command, reason error) core.DecisionResult {
	event := core.BuildManagingUserFailed(command.UserID, reason.Error(), command.OccurredAt)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w", event.EventType(), reason))
}

func project(history core.DomainEvents, command Command) state {
	var s state

	for _, event := range history {
		e, ok := event.(core.UserRegistered)
		if !ok {
			continue
		}

		if e.UserID == command.UserID.String() && !s.userExists {
			s.user = e
			s.userExists = true
		}

		if e.StudentCode == command.StudentCode && !s.codeIsTaken {
			s.codeIsTaken = true
		}
	}

	return s
}

// BuildEventFilter creates the filter for registrations with the user id OR the student code.
func BuildEventFilter(command Command) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.UserRegisteredEventType).
		AndAnyPredicateOf(
			eventstore.P("UserID", command.UserID.String()),
			eventstore.P("StudentCode", command.StudentCode),
		).
		Finalize()
}
