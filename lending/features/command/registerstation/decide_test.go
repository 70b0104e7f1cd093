package registerstation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_Decide_Success_WhenStationIsNew(t *testing.T) {
	// arrange
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	command := givenCommand("station-a", 10, 4, now)

	// act
	result := registerstation.Decide(core.DomainEvents{}, command)

	// assert
	require.NoError(t, result.HasError())
	registered, ok := result.Event.(core.StationRegistered)
	require.True(t, ok)
	assert.Equal(t, "station-a", registered.StationID)
	assert.Equal(t, 10, registered.Capacity)
	assert.Equal(t, 4, registered.AvailableUnits)
}

func Test_Decide_Idempotent_WhenSameStationRegisteredAgain(t *testing.T) {
	// arrange
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	first := registerstation.Decide(core.DomainEvents{}, givenCommand("station-a", 10, 4, now))
	require.NoError(t, first.HasError())

	// act
	result := registerstation.Decide(core.DomainEvents{first.Event}, givenCommand("station-a", 10, 4, now.Add(time.Hour)))

	// assert
	assert.False(t, result.HasEventToAppend())
}

//nolint:funlen
func Test_Decide_BusinessErrors(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	existing := core.DomainEvents{
		core.BuildStationRegistered("station-a", "Station station-a", "Library", 4.6, -74.08, 10, 4, now),
	}

	tests := []struct {
		name        string
		history     core.DomainEvents
		command     registerstation.Command
		expectedErr error
	}{
		{
			name:        "available units above capacity",
			history:     core.DomainEvents{},
			command:     givenCommand("station-b", 3, 4, now),
			expectedErr: core.ErrInvalidCapacity,
		},
		{
			name:        "negative capacity",
			history:     core.DomainEvents{},
			command:     givenCommand("station-b", -1, 0, now),
			expectedErr: core.ErrInvalidCapacity,
		},
		{
			name:        "same id with different details",
			history:     existing,
			command:     givenCommand("station-a", 12, 4, now),
			expectedErr: core.ErrStationAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			result := registerstation.Decide(tt.history, tt.command)

			// assert
			assert.ErrorIs(t, result.HasError(), tt.expectedErr)
			assert.IsType(t, core.ManagingStationFailed{}, result.Event)
		})
	}
}

func givenCommand(stationID string, capacity, available int, at time.Time) registerstation.Command {
	return registerstation.BuildCommand(stationID, "Station "+stationID, "Library", 4.6, -74.08, capacity, available, at)
}
