package registerstation

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "RegisterStation"
)

// Command represents the intent to register a station with its initial stock.
type Command struct {
	StationID      core.StationIDString
	Name           string
	Location       string
	Latitude       float64
	Longitude      float64
	Capacity       int
	AvailableUnits int
	OccurredAt     core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(
	stationID core.StationIDString,
	name string,
	location string,
	latitude float64,
	longitude float64,
	capacity int,
	availableUnits int,
	occurredAt time.Time,
) Command {

	return Command{
		StationID:      stationID,
		Name:           name,
		Location:       location,
		Latitude:       latitude,
		Longitude:      longitude,
		Capacity:       capacity,
		AvailableUnits: availableUnits,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
