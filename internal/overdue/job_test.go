package overdue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/eventstore/memengine"
	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/internal/overdue"
	"github.com/mrcrpro/panaguas/internal/stationcache"
	"github.com/mrcrpro/panaguas/lending/features/query/duesoonloans"
	"github.com/mrcrpro/panaguas/lending/features/query/userprofile"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
	"github.com/mrcrpro/panaguas/testutil/testdoubles"
)

func Test_Job_Run_SendsOneNoticePerStage(t *testing.T) { //nolint:funlen
	testCases := []struct {
		description     string
		loanedAgo       time.Duration
		expectedKind    notification.Kind
		expectedNotices int
		expectedMinutes int
	}{
		{"not due soon", 2 * time.Minute, "", 0, 0},
		{"first warning", 8 * time.Minute, notification.KindDueSoon, 1, 12},
		{"final warning", 17 * time.Minute, notification.KindDueSoon, 1, 3},
		{"overdue within grace", 20*time.Minute + 30*time.Second, "", 0, 0},
		{"fine started", 25 * time.Minute, notification.KindFineStarted, 1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			now := time.Now().UTC().Truncate(time.Second)
			es := fixtures.NewMemoryEventStore(t)
			userID := givenUserWithLoan(t, es, "loan-1", now.Add(-tc.loanedAgo))
			spy := testdoubles.NewNotificationSinkSpy(nil)
			job := givenJob(t, es, spy, now)

			// act
			sent, err := job.Run(context.Background())

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.expectedNotices, sent)
			require.Len(t, spy.Notifications(), tc.expectedNotices)
			if tc.expectedNotices == 0 {
				return
			}

			n := spy.Notifications()[0]
			assert.Equal(t, tc.expectedKind, n.Kind)
			assert.Equal(t, "loan-1", n.LoanID)
			assert.Equal(t, userID.String(), n.Recipient.UserID)
			assert.Equal(t, "20201234@campus.example.edu", n.Recipient.Email)
			assert.Equal(t, tc.expectedMinutes, n.Details.RemainingMinutes)
		})
	}
}

func Test_Job_Run_DoesNotRepeatNoticeOfSameStage(t *testing.T) {
	// arrange
	now := time.Now().UTC().Truncate(time.Second)
	es := fixtures.NewMemoryEventStore(t)
	givenUserWithLoan(t, es, "loan-1", now.Add(-8*time.Minute))
	spy := testdoubles.NewNotificationSinkSpy(nil)
	job := givenJob(t, es, spy, now)
	_, err := job.Run(context.Background())
	require.NoError(t, err)

	// act
	sent, err := job.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, spy.Notifications(), 1)
}

func Test_Job_Run_SkipsReturnedLoans(t *testing.T) {
	// arrange
	now := time.Now().UTC().Truncate(time.Second)
	es := fixtures.NewMemoryEventStore(t)
	userID := uuid.New()
	opened := fixtures.LoanOpened("loan-1", userID, "station-a", core.TierFree, now.Add(-30*time.Minute))
	fixtures.GivenEventsAppended(t, es,
		fixtures.UserRegistered(userID, "20201234", core.TierFree, now.Add(-time.Hour)),
		opened,
		fixtures.LoanClosed(t, opened, "station-a", now.Add(-time.Minute)),
	)
	spy := testdoubles.NewNotificationSinkSpy(nil)

	// act
	sent, err := givenJob(t, es, spy, now).Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func Test_Job_Run_Error_WhenQueryFails(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)
	spy := testdoubles.NewNotificationSinkSpy(nil)
	job := givenJob(t, es, spy, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := job.Run(ctx)

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_NewJob_Error_WhenDependencyMissing(t *testing.T) {
	// act
	_, err := overdue.NewJob(nil, nil, nil, nil)

	// assert
	assert.True(t, errors.Is(err, overdue.ErrMissingDependency))
}

func Test_NewScheduler_Error_WhenSpecInvalid(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)
	job := givenJob(t, es, testdoubles.NewNotificationSinkSpy(nil), time.Now())

	// act
	_, err := overdue.NewScheduler(job, "every now and then", nil)

	// assert
	assert.Error(t, err)
}

func Test_Scheduler_StartAndStop(t *testing.T) {
	// arrange
	es := fixtures.NewMemoryEventStore(t)
	job := givenJob(t, es, testdoubles.NewNotificationSinkSpy(nil), time.Now())
	scheduler, err := overdue.NewScheduler(job, "@every 1h", nil)
	require.NoError(t, err)

	// act
	require.NoError(t, scheduler.Start())
	secondStart := scheduler.Start()
	stopErr := scheduler.Stop(context.Background())

	// assert
	assert.ErrorIs(t, secondStart, overdue.ErrAlreadyStarted)
	assert.NoError(t, stopErr)
}

func givenUserWithLoan(t *testing.T, es *memengine.EventStore, loanID string, loanedAt time.Time) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	fixtures.GivenEventsAppended(t, es,
		fixtures.UserRegistered(userID, "20201234", core.TierFree, loanedAt.Add(-time.Hour)),
		fixtures.LoanOpened(loanID, userID, "station-a", core.TierFree, loanedAt),
	)

	return userID
}

func givenJob(t *testing.T, es *memengine.EventStore, notifier notification.Notifier, now time.Time) *overdue.Job {
	t.Helper()

	job, err := overdue.NewJob(
		duesoonloans.NewQueryHandler(es),
		userprofile.NewQueryHandler(es),
		notifier,
		stationcache.NewMemoryCache(time.Minute),
		overdue.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	return job
}
