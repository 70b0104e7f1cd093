package changedonationtier_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/changedonationtier"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_Decide_Success_WhenTierDiffers(t *testing.T) {
	// arrange
	userID := uuid.New()
	history := core.DomainEvents{
		core.BuildUserRegistered(userID, "20201234", "Ana", "", core.TierFree, time.Now()),
	}

	// act
	result := changedonationtier.Decide(history, changedonationtier.BuildCommand(userID, core.TierDonorHigh, time.Now()))

	// assert
	require.NoError(t, result.HasError())
	changed, ok := result.Event.(core.DonationTierChanged)
	require.True(t, ok)
	assert.Equal(t, string(core.TierDonorHigh), changed.DonationTier)
}

func Test_Decide_Idempotent_WhenTierUnchanged(t *testing.T) {
	// arrange
	userID := uuid.New()
	history := core.DomainEvents{
		core.BuildUserRegistered(userID, "20201234", "Ana", "", core.TierFree, time.Now()),
		core.BuildDonationTierChanged(userID, core.TierDonorLow, time.Now()),
	}

	// act
	result := changedonationtier.Decide(history, changedonationtier.BuildCommand(userID, core.TierDonorLow, time.Now()))

	// assert
	assert.False(t, result.HasEventToAppend())
}

func Test_Decide_Error_WhenUserNotRegistered(t *testing.T) {
	// act
	result := changedonationtier.Decide(core.DomainEvents{}, changedonationtier.BuildCommand(uuid.New(), core.TierDonorLow, time.Now()))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrUserNotFound)
	assert.IsType(t, core.ManagingUserFailed{}, result.Event)
}
