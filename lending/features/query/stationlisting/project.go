package stationlisting

import (
	"slices"
	"strings"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ProjectStations replays the inventory of every station in history.
// Loan events of stations that were never registered are ignored.
func ProjectStations(history core.DomainEvents, maxSequenceNumber eventstore.MaxSequenceNumberUint) Stations {
	return Project(history, BuildQuery(), maxSequenceNumber, Stations{})
}

// Project folds history onto the listing base, e.g. one restored from a snapshot.
// A station's registration resets its inventory, so dropping unregistered stations from base loses nothing.
func Project(history core.DomainEvents, _ Query, maxSequenceNumber eventstore.MaxSequenceNumberUint, base Stations) Stations {
	inventories := make(map[core.StationIDString]*core.StationInventory, len(base.Stations))

	for _, station := range base.Stations {
		inventories[station.ID] = &core.StationInventory{
			StationID:      station.ID,
			Name:           station.Name,
			Location:       station.Location,
			Latitude:       station.Coords[0],
			Longitude:      station.Coords[1],
			Capacity:       station.Capacity,
			AvailableUnits: station.AvailableUnits,
			Status:         core.OperationalStatus(station.OperationalStatus),
			Registered:     true,
		}
	}

	for _, event := range history {
		stationID, ok := core.AffectedStationID(event)
		if !ok {
			continue
		}

		inventory, exists := inventories[stationID]
		if !exists {
			fresh := core.NewStationInventory(stationID)
			inventory = &fresh
			inventories[stationID] = inventory
		}

		inventory.Apply(event)
	}

	stations := make([]Station, 0, len(inventories))
	for _, inventory := range inventories {
		if !inventory.Registered {
			continue
		}

		stations = append(stations, Station{
			ID:                inventory.StationID,
			Name:              inventory.Name,
			Location:          inventory.Location,
			AvailableUnits:    inventory.AvailableUnits,
			Capacity:          inventory.Capacity,
			OperationalStatus: string(inventory.Status),
			Status:            inventory.DisplayStatus(),
			Coords:            [2]float64{inventory.Latitude, inventory.Longitude},
		})
	}

	slices.SortFunc(stations, func(a, b Station) int {
		return strings.Compare(a.ID, b.ID)
	})

	return Stations{
		Stations:       stations,
		Count:          len(stations),
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter creates the filter for every event that changes a station's inventory.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.StationRegisteredEventType,
			core.StationStatusChangedEventType,
			core.StationStockAdjustedEventType,
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		Finalize()
}
