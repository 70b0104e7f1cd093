package userprofile_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/query/userprofile"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_QueryHandler_Handle_ReturnsProfileWithLoanState(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	now := time.Now()
	fixtures.GivenEventsAppended(t, es,
		fixtures.UserRegistered(userID, "20201234", core.TierFree, now.Add(-time.Hour)),
		core.BuildDonationTierChanged(userID, core.TierDonorMedium, now.Add(-30*time.Minute)),
		fixtures.LoanOpened("loan-1", userID, "station-a", core.TierDonorMedium, now.Add(-time.Minute)),
		fixtures.UserRegistered(uuid.New(), "20209999", core.TierFree, now),
	)

	// act
	profile, err := userprofile.NewQueryHandler(es).Handle(context.Background(), userprofile.BuildQuery(userID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "20201234", profile.StudentCode)
	assert.Equal(t, "20201234@campus.example.edu", profile.Email)
	assert.Equal(t, core.TierDonorMedium, profile.Tier)
	assert.True(t, profile.HasActiveLoan)
	assert.Equal(t, "loan-1", profile.ActiveLoanID)
	assert.Equal(t, uint(3), profile.GetSequenceNumber())
}

func Test_QueryHandler_Handle_Error_WhenUserUnknown(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)

	// act
	_, err := userprofile.NewQueryHandler(es).Handle(context.Background(), userprofile.BuildQuery(uuid.New()))

	// assert
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}
