package adjuststationstock

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "AdjustStationStock"
)

// Command represents the intent to set capacity and available units of a station after a recount.
type Command struct {
	StationID      core.StationIDString
	Capacity       int
	AvailableUnits int
	OccurredAt     core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(stationID core.StationIDString, capacity int, availableUnits int, occurredAt time.Time) Command {
	return Command{
		StationID:      stationID,
		Capacity:       capacity,
		AvailableUnits: availableUnits,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
