package core

import (
	"time"

	"github.com/google/uuid"
)

// ManagingUserFailedEventType is the event type identifier.
const ManagingUserFailedEventType = "ManagingUserFailed"

// ManagingUserFailed records a rejected user management command.
type ManagingUserFailed struct {
	UserID      UserIDString
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildManagingUserFailed creates a new ManagingUserFailed event.
func BuildManagingUserFailed(userID uuid.UUID, failureInfo string, occurredAt time.Time) ManagingUserFailed {
	return ManagingUserFailed{
		UserID:      userID.String(),
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ManagingUserFailed) EventType() string {
	return ManagingUserFailedEventType
}

func (e ManagingUserFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e ManagingUserFailed) IsErrorEvent() bool {
	return true
}
