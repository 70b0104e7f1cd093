package changestationstatus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/changestationstatus"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_Decide_Success_WhenStatusDiffers(t *testing.T) {
	// arrange
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	history := core.DomainEvents{givenStationRegistered(t, now.Add(-time.Hour))}

	// act
	result := changestationstatus.Decide(history, changestationstatus.BuildCommand("station-a", core.StatusMaintenance, now))

	// assert
	require.NoError(t, result.HasError())
	changed, ok := result.Event.(core.StationStatusChanged)
	require.True(t, ok)
	assert.Equal(t, string(core.StatusMaintenance), changed.Status)
}

func Test_Decide_Idempotent_WhenStatusUnchanged(t *testing.T) {
	// arrange
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	history := core.DomainEvents{givenStationRegistered(t, now.Add(-time.Hour))}

	// act
	result := changestationstatus.Decide(history, changestationstatus.BuildCommand("station-a", core.StatusOperational, now))

	// assert
	assert.False(t, result.HasEventToAppend())
}

func Test_Decide_BusinessErrors(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		history     core.DomainEvents
		command     changestationstatus.Command
		expectedErr error
	}{
		{
			name:        "station not registered",
			history:     core.DomainEvents{},
			command:     changestationstatus.BuildCommand("station-a", core.StatusMaintenance, now),
			expectedErr: core.ErrStationNotFound,
		},
		{
			name:        "unknown status value",
			history:     core.DomainEvents{givenStationRegistered(t, now.Add(-time.Hour))},
			command:     changestationstatus.BuildCommand("station-a", core.OperationalStatus("Broken"), now),
			expectedErr: core.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := changestationstatus.Decide(tt.history, tt.command)

			assert.ErrorIs(t, result.HasError(), tt.expectedErr)
			assert.IsType(t, core.ManagingStationFailed{}, result.Event)
		})
	}
}

func givenStationRegistered(t *testing.T, at time.Time) core.StationRegistered {
	t.Helper()

	return core.BuildStationRegistered("station-a", "Station A", "Library", 4.6, -74.08, 5, 5, at)
}
