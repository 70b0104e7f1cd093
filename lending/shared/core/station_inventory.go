package core

import (
	"strings"
)

// OperationalStatus is set by station management.
type OperationalStatus string

const (
	StatusOperational OperationalStatus = "Operational"
	StatusMaintenance OperationalStatus = "Maintenance"
	StatusUnknown     OperationalStatus = "Unknown"
)

// ParseOperationalStatus accepts the canonical names case-insensitively.
func ParseOperationalStatus(value string) (OperationalStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "operational":
		return StatusOperational, nil
	case "maintenance":
		return StatusMaintenance, nil
	case "unknown":
		return StatusUnknown, nil
	default:
		return "", ErrInvalidStatus
	}
}

// StationInventory is the umbrella stock of one station, projected from its events.
// Invariant: 0 <= AvailableUnits <= Capacity.
type StationInventory struct {
	StationID      StationIDString
	Name           string
	Location       string
	Latitude       float64
	Longitude      float64
	Capacity       int
	AvailableUnits int
	Status         OperationalStatus
	Registered     bool
}

// NewStationInventory returns the not-yet-registered inventory of stationID, ready for Apply.
func NewStationInventory(stationID StationIDString) StationInventory {
	return StationInventory{StationID: stationID, Status: StatusUnknown}
}

// ProjectStationInventory replays history for stationID.
func ProjectStationInventory(history DomainEvents, stationID StationIDString) StationInventory {
	s := NewStationInventory(stationID)

	for _, event := range history {
		s.Apply(event)
	}

	return s
}

// Apply folds one event into the inventory. Events of other stations are ignored.
func (s *StationInventory) Apply(event DomainEvent) {
	switch e := event.(type) {
	case StationRegistered:
		if e.StationID == s.StationID {
			s.Registered = true
			s.Name = e.Name
			s.Location = e.Location
			s.Latitude = e.Latitude
			s.Longitude = e.Longitude
			s.Capacity = e.Capacity
			s.AvailableUnits = e.AvailableUnits
			s.Status = StatusOperational
		}

	case StationStatusChanged:
		if e.StationID == s.StationID {
			s.Status = OperationalStatus(e.Status)
		}

	case StationStockAdjusted:
		if e.StationID == s.StationID {
			s.Capacity = e.Capacity
			s.AvailableUnits = e.AvailableUnits
		}

	case LoanOpened:
		if e.StationID == s.StationID && s.AvailableUnits > 0 {
			s.AvailableUnits--
		}

	case LoanClosed:
		if e.StationID == s.StationID && e.UnitRestocked && s.AvailableUnits < s.Capacity {
			s.AvailableUnits++
		}
	}
}

// Decrement takes one umbrella out. Checks run in the order the loan request validates them.
func (s *StationInventory) Decrement() error {
	if !s.Registered {
		return ErrStationNotFound
	}

	if s.AvailableUnits <= 0 {
		return ErrOutOfStock
	}

	if s.Status != StatusOperational {
		return ErrStationNotOperational
	}

	s.AvailableUnits--

	return nil
}

// Increment puts one umbrella back. At capacity it is a no-op and restocked is false.
func (s *StationInventory) Increment() (restocked bool, err error) {
	if !s.Registered {
		return false, ErrStationNotFound
	}

	if s.AvailableUnits >= s.Capacity {
		return false, nil
	}

	s.AvailableUnits++

	return true, nil
}

// DisplayStatus is what the station listing shows: an operational station without stock is "Empty".
func (s StationInventory) DisplayStatus() string {
	switch s.Status {
	case StatusOperational:
		if s.AvailableUnits <= 0 {
			return "Empty"
		}

		return string(StatusOperational)
	case StatusMaintenance:
		return string(StatusMaintenance)
	default:
		return string(StatusUnknown)
	}
}

// AffectedStationID returns the station whose inventory event changes, if any.
func AffectedStationID(event DomainEvent) (StationIDString, bool) {
	switch e := event.(type) {
	case StationRegistered:
		return e.StationID, true
	case StationStatusChanged:
		return e.StationID, true
	case StationStockAdjusted:
		return e.StationID, true
	case LoanOpened:
		return e.StationID, true
	case LoanClosed:
		return e.StationID, true
	default:
		return "", false
	}
}

// ValidateStock checks the capacity bounds of a registration or recount.
func ValidateStock(capacity int, availableUnits int) error {
	if capacity < 0 || availableUnits < 0 || availableUnits > capacity {
		return ErrInvalidCapacity
	}

	return nil
}
