package returnloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/command/returnloan"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_Decide_Success_OnTimeReturnHasNoFine(t *testing.T) {
	// arrange
	userID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := core.DomainEvents{
		givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
		givenLoanOpened(t, "loan-1", userID, "station-a", core.TierFree, loanedAt),
	}
	command := returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt.Add(19*time.Minute))

	// act
	result := returnloan.Decide(events, command)

	// assert
	require.NoError(t, result.HasError())
	closed, ok := result.Event.(core.LoanClosed)
	require.True(t, ok)
	assert.Equal(t, core.Amount(0), closed.FineAmount)
	assert.True(t, closed.UnitRestocked)
	assert.Equal(t, "station-a", closed.OriginStationID)
}

func Test_Decide_Success_FreeTierTwentyMinutesLateIsFinedTwoBlocks(t *testing.T) {
	// arrange
	userID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := core.DomainEvents{
		givenStationRegistered(t, "station-b", 5, 4, loanedAt.Add(-time.Hour)),
		givenLoanOpened(t, "loan-1", userID, "station-a", core.TierFree, loanedAt),
	}
	command := returnloan.BuildCommand(userID, "loan-1", "station-b", loanedAt.Add(40*time.Minute))

	// act
	result := returnloan.Decide(events, command)

	// assert
	require.NoError(t, result.HasError())
	closed, ok := result.Event.(core.LoanClosed)
	require.True(t, ok)
	assert.Equal(t, core.Amount(4000), closed.FineAmount)
	assert.Equal(t, "station-b", closed.StationID)
}

func Test_Decide_Success_UsesTierTheLoanWasOpenedWith(t *testing.T) {
	// arrange
	userID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := core.DomainEvents{
		givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
		givenLoanOpened(t, "loan-1", userID, "station-a", core.TierDonorHigh, loanedAt),
		core.BuildDonationTierChanged(userID, core.TierFree, loanedAt.Add(time.Minute)),
	}
	command := returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt.Add(70*time.Minute))

	// act
	result := returnloan.Decide(events, command)

	// assert
	closed, ok := result.Event.(core.LoanClosed)
	require.True(t, ok)
	assert.Equal(t, core.Amount(0), closed.FineAmount)
}

func Test_Decide_Success_FullStationIsNotRestocked(t *testing.T) {
	// arrange
	userID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := core.DomainEvents{
		givenStationRegistered(t, "station-a", 3, 3, loanedAt.Add(-time.Hour)),
		givenLoanOpened(t, "loan-1", userID, "station-b", core.TierFree, loanedAt),
	}
	command := returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt.Add(5*time.Minute))

	// act
	result := returnloan.Decide(events, command)

	// assert
	require.NoError(t, result.HasError())
	closed, ok := result.Event.(core.LoanClosed)
	require.True(t, ok)
	assert.False(t, closed.UnitRestocked)
}

func Test_Decide_Idempotent_WhenLoanAlreadyClosed(t *testing.T) {
	// arrange
	userID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	opened := givenLoanOpened(t, "loan-1", userID, "station-a", core.TierFree, loanedAt)
	closed, err := core.LoanRecordFrom(opened).Close(loanedAt.Add(10*time.Minute), "station-a", true)
	require.NoError(t, err)

	events := core.DomainEvents{
		givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
		opened,
		closed,
	}
	command := returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt.Add(11*time.Minute))

	// act
	result := returnloan.Decide(events, command)

	// assert
	assert.False(t, result.HasEventToAppend())
	assert.NoError(t, result.HasError())
}

//nolint:funlen
func Test_Decide_BusinessErrors(t *testing.T) {
	userID := uuid.New()
	otherUserID := uuid.New()
	loanedAt := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		events      core.DomainEvents
		command     returnloan.Command
		expectedErr error
	}{
		{
			name: "loan does not exist",
			events: core.DomainEvents{
				givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
			},
			command:     returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt),
			expectedErr: core.ErrNoActiveLoan,
		},
		{
			name: "loan belongs to another user",
			events: core.DomainEvents{
				givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
				givenLoanOpened(t, "loan-1", otherUserID, "station-a", core.TierFree, loanedAt),
			},
			command:     returnloan.BuildCommand(userID, "loan-1", "station-a", loanedAt.Add(time.Minute)),
			expectedErr: core.ErrNoActiveLoan,
		},
		{
			name: "return station is not registered",
			events: core.DomainEvents{
				givenStationRegistered(t, "station-a", 5, 1, loanedAt.Add(-time.Hour)),
				givenLoanOpened(t, "loan-1", userID, "station-a", core.TierFree, loanedAt),
			},
			command:     returnloan.BuildCommand(userID, "loan-1", "station-x", loanedAt.Add(time.Minute)),
			expectedErr: core.ErrStationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			result := returnloan.Decide(tt.events, tt.command)

			// assert
			assert.ErrorIs(t, result.HasError(), tt.expectedErr)
			assert.IsType(t, core.ReturningLoanFailed{}, result.Event)
		})
	}
}

func givenStationRegistered(t *testing.T, stationID string, capacity, available int, at time.Time) core.StationRegistered {
	t.Helper()

	return core.BuildStationRegistered(stationID, "Station "+stationID, "Campus", 4.6, -74.08, capacity, available, at)
}

func givenLoanOpened(
	t *testing.T,
	loanID string,
	userID uuid.UUID,
	stationID string,
	tier core.DonationTier,
	at time.Time,
) core.LoanOpened {

	t.Helper()

	return core.OpenLoan(loanID, userID.String(), stationID, tier, "", at)
}
