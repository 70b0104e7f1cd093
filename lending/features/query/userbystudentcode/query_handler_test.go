package userbystudentcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/query/userbystudentcode"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_QueryHandler_Handle_ReturnsUser_WhenCodeIsRegistered(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	fixtures.GivenEventsAppended(t, es,
		fixtures.UserRegistered(uuid.New(), "20200001", core.TierFree, time.Now()),
		fixtures.UserRegistered(userID, "20201234", core.TierFree, time.Now()),
	)

	// act
	user, err := userbystudentcode.NewQueryHandler(es).Handle(context.Background(), userbystudentcode.BuildQuery("20201234"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, "20201234", user.StudentCode)
	assert.Equal(t, uint(2), user.GetSequenceNumber())
}

func Test_QueryHandler_Handle_Error_WhenCodeIsUnknown(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)

	// act
	_, err := userbystudentcode.NewQueryHandler(es).Handle(context.Background(), userbystudentcode.BuildQuery("20209999"))

	// assert
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func Test_ProjectUser_EarliestRegistrationWins(t *testing.T) {
	// arrange
	first, second := uuid.New(), uuid.New()
	history := core.DomainEvents{
		core.BuildUserRegistered(first, "20201234", "Ana", "", core.TierFree, time.Now()),
		core.BuildUserRegistered(second, "20201234", "Luis", "", core.TierFree, time.Now()),
	}

	// act
	user, err := userbystudentcode.ProjectUser(history, userbystudentcode.BuildQuery("20201234"), 2)

	// assert
	require.NoError(t, err)
	assert.Equal(t, first, user.UserID)
}
