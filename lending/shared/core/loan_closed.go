package core

import (
	"time"
)

// LoanClosedEventType is the event type identifier.
const LoanClosedEventType = "LoanClosed"

// LoanClosed represents an umbrella brought back. StationID is the return station,
// which may differ from OriginStationID. UnitRestocked is false if the return station was already full.
type LoanClosed struct {
	LoanID          LoanIDString
	UserID          UserIDString
	OriginStationID StationIDString
	StationID       StationIDString
	LoanedAt        time.Time
	FineAmount      Amount
	UnitRestocked   bool
	OccurredAt      OccurredAt
}

func (e LoanClosed) EventType() string {
	return LoanClosedEventType
}

func (e LoanClosed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanClosed) IsErrorEvent() bool {
	return false
}
