package changestationstatus

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "ChangeStationStatus"
)

// Command represents the intent to set the operational status of a station.
type Command struct {
	StationID  core.StationIDString
	Status     core.OperationalStatus
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(stationID core.StationIDString, status core.OperationalStatus, occurredAt time.Time) Command {
	return Command{
		StationID:  stationID,
		Status:     status,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
