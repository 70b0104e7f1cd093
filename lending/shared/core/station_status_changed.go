package core

import (
	"time"
)

// StationStatusChangedEventType is the event type identifier.
const StationStatusChangedEventType = "StationStatusChanged"

// StationStatusChanged represents when a station goes into or out of maintenance.
type StationStatusChanged struct {
	StationID  StationIDString
	Status     string
	OccurredAt OccurredAt
}

// BuildStationStatusChanged creates a new StationStatusChanged event.
func BuildStationStatusChanged(stationID StationIDString, status OperationalStatus, occurredAt time.Time) StationStatusChanged {
	return StationStatusChanged{
		StationID:  stationID,
		Status:     string(status),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e StationStatusChanged) EventType() string {
	return StationStatusChangedEventType
}

func (e StationStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e StationStatusChanged) IsErrorEvent() bool {
	return false
}
