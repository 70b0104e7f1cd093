package stationlisting

import (
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Station is one entry of the listing. Status is the display status, OperationalStatus the managed one.
type Station struct {
	ID                core.StationIDString `json:"id"`
	Name              string               `json:"name"`
	Location          string               `json:"location"`
	AvailableUnits    int                  `json:"availableUnits"`
	Capacity          int                  `json:"capacity"`
	OperationalStatus string               `json:"operationalStatus"`
	Status            string               `json:"status"`
	Coords            [2]float64           `json:"coords"`
}

// Stations is the listing ordered by station id.
type Stations struct {
	Stations       []Station `json:"stations"`
	Count          int       `json:"count"`
	SequenceNumber uint      `json:"sequenceNumber"`
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (s Stations) GetSequenceNumber() uint {
	return s.SequenceNumber
}

// Find returns the station with id.
func (s Stations) Find(id core.StationIDString) (Station, bool) {
	for _, station := range s.Stations {
		if station.ID == id {
			return station, true
		}
	}

	return Station{}, false
}
