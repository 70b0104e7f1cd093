package adjuststationstock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/adjuststationstock"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CommandHandler_Handle_RecountIsProjected(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	now := time.Now()
	fixtures.GivenEventsAppended(t, es, fixtures.StationRegistered("station-a", 5, 1, now.Add(-time.Hour)))
	handler := adjuststationstock.NewCommandHandler(es)

	// act
	_, err := handler.Handle(ctx, adjuststationstock.BuildCommand("station-a", 8, 7, now))

	// assert
	require.NoError(t, err)
	inventory := core.ProjectStationInventory(fixtures.AllDomainEvents(t, es), "station-a")
	assert.Equal(t, 8, inventory.Capacity)
	assert.Equal(t, 7, inventory.AvailableUnits)
}
