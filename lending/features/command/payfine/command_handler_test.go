package payfine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/payfine"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CommandHandler_Handle_FullPaymentClearsBalance(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	fixtures.GivenEventsAppended(t, es, givenUserWithFine(t, userID, 4000)...)

	// act
	_, err := payfine.NewCommandHandler(es).Handle(ctx, payfine.BuildCommand(userID, 4000, time.Now()))

	// assert
	require.NoError(t, err)
	user := core.ProjectUserLoanState(fixtures.AllDomainEvents(t, es), userID.String())
	assert.False(t, user.HasOutstandingFine())
}
