package core

import (
	"time"
)

// StationRegisteredEventType is the event type identifier.
const StationRegisteredEventType = "StationRegistered"

// StationRegistered represents when a dispensing station is put into service.
type StationRegistered struct {
	StationID      StationIDString
	Name           string
	Location       string
	Latitude       float64
	Longitude      float64
	Capacity       int
	AvailableUnits int
	OccurredAt     OccurredAt
}

// BuildStationRegistered creates a new StationRegistered event.
func BuildStationRegistered(
	stationID StationIDString,
	name string,
	location string,
	latitude float64,
	longitude float64,
	capacity int,
	availableUnits int,
	occurredAt time.Time,
) StationRegistered {

	return StationRegistered{
		StationID:      stationID,
		Name:           name,
		Location:       location,
		Latitude:       latitude,
		Longitude:      longitude,
		Capacity:       capacity,
		AvailableUnits: availableUnits,
		OccurredAt:     ToOccurredAt(occurredAt),
	}
}

func (e StationRegistered) EventType() string {
	return StationRegisteredEventType
}

func (e StationRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e StationRegistered) IsErrorEvent() bool {
	return false
}
