package core

import (
	"time"
)

// LoanOpenedEventType is the event type identifier.
const LoanOpenedEventType = "LoanOpened"

// LoanOpened represents an umbrella handed out to a user. It opens the loan record,
// marks the user as having an active loan and takes one unit from the station, all at once.
type LoanOpened struct {
	LoanID         LoanIDString
	UserID         UserIDString
	StationID      StationIDString
	DonationTier   string
	AllowedMinutes int
	DueAt          time.Time
	RequestID      string
	OccurredAt     OccurredAt
}

func (e LoanOpened) EventType() string {
	return LoanOpenedEventType
}

func (e LoanOpened) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanOpened) IsErrorEvent() bool {
	return false
}
