package core

import (
	"time"
)

// ReturningLoanFailedEventType is the event type identifier.
const ReturningLoanFailedEventType = "ReturningLoanFailed"

// ReturningLoanFailed records a denied return.
type ReturningLoanFailed struct {
	UserID      UserIDString
	LoanID      LoanIDString
	StationID   StationIDString
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildReturningLoanFailed creates a new ReturningLoanFailed event.
func BuildReturningLoanFailed(
	userID UserIDString,
	loanID LoanIDString,
	stationID StationIDString,
	failureInfo string,
	occurredAt time.Time,
) ReturningLoanFailed {

	return ReturningLoanFailed{
		UserID:      userID,
		LoanID:      loanID,
		StationID:   stationID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ReturningLoanFailed) EventType() string {
	return ReturningLoanFailedEventType
}

func (e ReturningLoanFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e ReturningLoanFailed) IsErrorEvent() bool {
	return true
}
