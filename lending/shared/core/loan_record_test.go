package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_OpenLoan_FixesDueTimeFromTier(t *testing.T) {
	// arrange
	loanedAt := time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC)

	// act
	opened := core.OpenLoan("l-1", "u-1", "s-1", core.TierDonorMedium, "req-1", loanedAt)

	// assert
	assert.Equal(t, 55, opened.AllowedMinutes)
	assert.Equal(t, loanedAt.Add(55*time.Minute), opened.DueAt)
	assert.Equal(t, "DonorMedium", opened.DonationTier)
	assert.Equal(t, "req-1", opened.RequestID)
}

func Test_LoanRecord_Close_ChargesFineOfRecordedTier(t *testing.T) {
	// arrange
	loanedAt := time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC)
	loan := core.LoanRecordFrom(core.OpenLoan("l-1", "u-1", "s-1", core.TierFree, "", loanedAt))

	// act
	closed, err := loan.Close(loanedAt.Add(40*time.Minute), "s-2", true)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.Amount(4000), closed.FineAmount)
	assert.Equal(t, "s-1", closed.OriginStationID)
	assert.Equal(t, "s-2", closed.StationID)
	assert.True(t, closed.UnitRestocked)
}

func Test_LoanRecord_Close_Error_WhenAlreadyClosed(t *testing.T) {
	// arrange
	loanedAt := time.Now()
	opened := core.OpenLoan("l-1", "u-1", "s-1", core.TierFree, "", loanedAt)
	loan := core.LoanRecordFrom(opened)
	closed, err := loan.Close(loanedAt.Add(time.Minute), "s-1", true)
	require.NoError(t, err)
	loan.Apply(closed)

	// act
	_, err = loan.Close(loanedAt.Add(2*time.Minute), "s-1", true)

	// assert
	assert.ErrorIs(t, err, core.ErrLoanNotOpen)
	assert.Equal(t, core.LoanStatusClosed, loan.Status)
}

func Test_ProjectLoans_KeepsOpeningOrder(t *testing.T) {
	// arrange
	now := time.Now()
	first := core.OpenLoan("l-1", "u-1", "s-1", core.TierFree, "", now)
	closed, err := core.LoanRecordFrom(first).Close(now.Add(time.Minute), "s-1", true)
	require.NoError(t, err)
	second := core.OpenLoan("l-2", "u-1", "s-1", core.TierFree, "", now.Add(2*time.Minute))

	// act
	loans := core.ProjectLoans(core.DomainEvents{first, closed, second})

	// assert
	require.Len(t, loans, 2)
	assert.Equal(t, core.LoanStatusClosed, loans[0].Status)
	assert.True(t, loans[1].IsOpen())

	found, ok := core.FindLoan(core.DomainEvents{first, closed, second}, "l-2")
	assert.True(t, ok)
	assert.Equal(t, "l-2", found.LoanID)
}

func Test_DeterministicLoanID(t *testing.T) {
	assert.Equal(t, core.DeterministicLoanID("u-1", "r-1"), core.DeterministicLoanID("u-1", "r-1"))
	assert.NotEqual(t, core.DeterministicLoanID("u-1", "r-1"), core.DeterministicLoanID("u-2", "r-1"))
}
