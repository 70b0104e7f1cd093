package core

import (
	"time"
)

// ManagingStationFailedEventType is the event type identifier.
const ManagingStationFailedEventType = "ManagingStationFailed"

// ManagingStationFailed records a rejected station management command.
type ManagingStationFailed struct {
	StationID   StationIDString
	FailureInfo string
	OccurredAt  OccurredAt
}

// BuildManagingStationFailed creates a new ManagingStationFailed event.
func BuildManagingStationFailed(stationID StationIDString, failureInfo string, occurredAt time.Time) ManagingStationFailed {
	return ManagingStationFailed{
		StationID:   stationID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ManagingStationFailed) EventType() string {
	return ManagingStationFailedEventType
}

func (e ManagingStationFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e ManagingStationFailed) IsErrorEvent() bool {
	return true
}
