package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_StationInventory_Decrement(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		history       core.DomainEvents
		expectedErr   error
		expectedUnits int
	}{
		{
			name:          "unknown station",
			history:       core.DomainEvents{},
			expectedErr:   core.ErrStationNotFound,
			expectedUnits: 0,
		},
		{
			name: "out of stock is checked before status",
			history: core.DomainEvents{
				core.BuildStationRegistered("s-1", "Library", "North", 0, 0, 5, 0, now),
				core.BuildStationStatusChanged("s-1", core.StatusMaintenance, now),
			},
			expectedErr:   core.ErrOutOfStock,
			expectedUnits: 0,
		},
		{
			name: "not operational",
			history: core.DomainEvents{
				core.BuildStationRegistered("s-1", "Library", "North", 0, 0, 5, 3, now),
				core.BuildStationStatusChanged("s-1", core.StatusMaintenance, now),
			},
			expectedErr:   core.ErrStationNotOperational,
			expectedUnits: 3,
		},
		{
			name: "success",
			history: core.DomainEvents{
				core.BuildStationRegistered("s-1", "Library", "North", 0, 0, 5, 1, now),
			},
			expectedErr:   nil,
			expectedUnits: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			inventory := core.ProjectStationInventory(tt.history, "s-1")

			// act
			err := inventory.Decrement()

			// assert
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedUnits, inventory.AvailableUnits)
		})
	}
}

func Test_StationInventory_Increment_NoOpAtCapacity(t *testing.T) {
	// arrange
	inventory := core.ProjectStationInventory(core.DomainEvents{
		core.BuildStationRegistered("s-1", "Library", "North", 0, 0, 2, 2, time.Now()),
	}, "s-1")

	// act
	restocked, err := inventory.Increment()

	// assert
	require.NoError(t, err)
	assert.False(t, restocked)
	assert.Equal(t, 2, inventory.AvailableUnits)
}

func Test_StationInventory_Increment_BelowCapacity(t *testing.T) {
	// arrange
	inventory := core.ProjectStationInventory(core.DomainEvents{
		core.BuildStationRegistered("s-1", "Library", "North", 0, 0, 2, 1, time.Now()),
	}, "s-1")

	// act
	restocked, err := inventory.Increment()

	// assert
	require.NoError(t, err)
	assert.True(t, restocked)
	assert.Equal(t, 2, inventory.AvailableUnits)
}

func Test_StationInventory_Increment_Error_WhenUnknown(t *testing.T) {
	inventory := core.NewStationInventory("s-404")

	_, err := inventory.Increment()

	assert.ErrorIs(t, err, core.ErrStationNotFound)
}

func Test_ProjectStationInventory_AppliesLoansOfThisStationOnly(t *testing.T) {
	// arrange
	now := time.Now()
	opened := core.OpenLoan("l-1", "u-1", "s-1", core.TierFree, "", now)
	history := core.DomainEvents{
		core.BuildStationRegistered("s-1", "Library", "North", 4.6, -74.1, 5, 3, now),
		core.BuildStationRegistered("s-2", "Gym", "South", 4.6, -74.1, 5, 3, now),
		opened,
		core.OpenLoan("l-2", "u-2", "s-2", core.TierFree, "", now),
	}

	// act
	inventory := core.ProjectStationInventory(history, "s-1")

	// assert
	assert.Equal(t, 2, inventory.AvailableUnits)
	assert.Equal(t, 5, inventory.Capacity)
	assert.Equal(t, core.StatusOperational, inventory.Status)
}

func Test_StationInventory_DisplayStatus(t *testing.T) {
	tests := []struct {
		status   core.OperationalStatus
		units    int
		expected string
	}{
		{status: core.StatusOperational, units: 2, expected: "Operational"},
		{status: core.StatusOperational, units: 0, expected: "Empty"},
		{status: core.StatusMaintenance, units: 2, expected: "Maintenance"},
		{status: core.StatusUnknown, units: 2, expected: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			inventory := core.StationInventory{Status: tt.status, AvailableUnits: tt.units, Capacity: 5}

			assert.Equal(t, tt.expected, inventory.DisplayStatus())
		})
	}
}

func Test_ValidateStock(t *testing.T) {
	assert.NoError(t, core.ValidateStock(5, 5))
	assert.NoError(t, core.ValidateStock(0, 0))
	assert.ErrorIs(t, core.ValidateStock(5, 6), core.ErrInvalidCapacity)
	assert.ErrorIs(t, core.ValidateStock(-1, 0), core.ErrInvalidCapacity)
	assert.ErrorIs(t, core.ValidateStock(5, -1), core.ErrInvalidCapacity)
}

func Test_ParseOperationalStatus(t *testing.T) {
	status, err := core.ParseOperationalStatus("maintenance")
	require.NoError(t, err)
	assert.Equal(t, core.StatusMaintenance, status)

	_, err = core.ParseOperationalStatus("broken")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}
