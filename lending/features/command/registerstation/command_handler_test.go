package registerstation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CommandHandler_Handle_RegistersStationOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	handler := registerstation.NewCommandHandler(es)
	command := givenCommand("station-a", 8, 8, time.Now())

	// act
	first, err := handler.Handle(ctx, command)
	require.NoError(t, err)
	second, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.False(t, first.Idempotent)
	assert.True(t, second.Idempotent)
	assert.Equal(t, 1, fixtures.CountEvents(t, es, core.StationRegisteredEventType))

	inventory := core.ProjectStationInventory(fixtures.AllDomainEvents(t, es), "station-a")
	assert.True(t, inventory.Registered)
	assert.Equal(t, core.StatusOperational, inventory.Status)
}

func Test_CommandHandler_Handle_Error_InvalidCapacityIsAudited(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	handler := registerstation.NewCommandHandler(es)

	// act
	_, err := handler.Handle(ctx, givenCommand("station-a", 2, 5, time.Now()))

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidCapacity)
	assert.Equal(t, 0, fixtures.CountEvents(t, es, core.StationRegisteredEventType))
	assert.Equal(t, 1, fixtures.CountEvents(t, es, core.ManagingStationFailedEventType))
}
