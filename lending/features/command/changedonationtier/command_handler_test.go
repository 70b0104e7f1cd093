package changedonationtier_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/changedonationtier"
	"github.com/mrcrpro/panaguas/lending/features/command/requestloan"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CommandHandler_Handle_NewTierAppliesToNextLoan(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	now := time.Now()
	fixtures.GivenEventsAppended(t, es,
		fixtures.StationRegistered("station-a", 5, 5, now.Add(-time.Hour)),
		fixtures.UserRegistered(userID, "20201234", core.TierFree, now.Add(-time.Hour)),
	)

	// act
	_, err := changedonationtier.NewCommandHandler(es).Handle(ctx, changedonationtier.BuildCommand(userID, core.TierDonorMedium, now))
	require.NoError(t, err)
	_, err = requestloan.NewCommandHandler(es).Handle(ctx, requestloan.BuildCommand(userID, "station-a", "", now))
	require.NoError(t, err)

	// assert
	loans := core.ProjectLoans(fixtures.AllDomainEvents(t, es))
	require.Len(t, loans, 1)
	assert.Equal(t, core.TierDonorMedium, loans[0].Tier)
}
