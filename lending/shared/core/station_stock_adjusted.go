package core

import (
	"time"
)

// StationStockAdjustedEventType is the event type identifier.
const StationStockAdjustedEventType = "StationStockAdjusted"

// StationStockAdjusted represents a physical recount of a station by staff.
type StationStockAdjusted struct {
	StationID      StationIDString
	Capacity       int
	AvailableUnits int
	OccurredAt     OccurredAt
}

// BuildStationStockAdjusted creates a new StationStockAdjusted event.
func BuildStationStockAdjusted(stationID StationIDString, capacity int, availableUnits int, occurredAt time.Time) StationStockAdjusted {
	return StationStockAdjusted{
		StationID:      stationID,
		Capacity:       capacity,
		AvailableUnits: availableUnits,
		OccurredAt:     ToOccurredAt(occurredAt),
	}
}

func (e StationStockAdjusted) EventType() string {
	return StationStockAdjustedEventType
}

func (e StationStockAdjusted) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e StationStockAdjusted) IsErrorEvent() bool {
	return false
}
