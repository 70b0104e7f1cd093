package core

import (
	"time"
)

// RequestingLoanFailedEventType is the event type identifier.
const RequestingLoanFailedEventType = "RequestingLoanFailed"

// RequestingLoanFailed records a denied loan request.
type RequestingLoanFailed struct {
	UserID      UserIDString
	StationID   StationIDString
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildRequestingLoanFailed creates a new RequestingLoanFailed event.
func BuildRequestingLoanFailed(
	userID UserIDString,
	stationID StationIDString,
	failureInfo string,
	occurredAt time.Time,
) RequestingLoanFailed {

	return RequestingLoanFailed{
		UserID:      userID,
		StationID:   stationID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e RequestingLoanFailed) EventType() string {
	return RequestingLoanFailedEventType
}

func (e RequestingLoanFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e RequestingLoanFailed) IsErrorEvent() bool {
	return true
}
