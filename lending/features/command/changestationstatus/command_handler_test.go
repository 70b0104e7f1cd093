package changestationstatus_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/changestationstatus"
	"github.com/mrcrpro/panaguas/lending/features/command/requestloan"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CommandHandler_Handle_MaintenanceStopsLoans(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	now := time.Now()
	fixtures.GivenEventsAppended(t, es,
		fixtures.StationRegistered("station-a", 5, 5, now.Add(-time.Hour)),
		fixtures.UserRegistered(userID, "20201234", core.TierFree, now.Add(-time.Hour)),
	)
	handler := changestationstatus.NewCommandHandler(es)

	// act
	_, err := handler.Handle(ctx, changestationstatus.BuildCommand("station-a", core.StatusMaintenance, now))

	// assert
	require.NoError(t, err)
	_, err = requestloan.NewCommandHandler(es).Handle(ctx, requestloan.BuildCommand(userID, "station-a", "", now))
	assert.ErrorIs(t, err, core.ErrStationNotOperational)
	assert.Equal(t, 5, core.ProjectStationInventory(fixtures.AllDomainEvents(t, es), "station-a").AvailableUnits)
}
