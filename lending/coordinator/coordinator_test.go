package coordinator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/eventstore/memengine"
	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/internal/stationcache"
	"github.com/mrcrpro/panaguas/lending/coordinator"
	"github.com/mrcrpro/panaguas/lending/features/command/requestloan"
	"github.com/mrcrpro/panaguas/lending/features/command/returnloan"
	"github.com/mrcrpro/panaguas/lending/features/query/loansbyuser"
	"github.com/mrcrpro/panaguas/lending/features/query/openloanforuser"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/features/query/userbystudentcode"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
	"github.com/mrcrpro/panaguas/testutil/testdoubles"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type testSetup struct {
	es            *memengine.EventStore
	coordinator   *coordinator.Coordinator
	notifications *testdoubles.NotificationSinkSpy
	cache         *stationcache.MemoryCache
	logger        *testdoubles.LoggerSpy
	clock         *testClock
}

func Test_RequestLoan_Authorized_OpensLoanAndAnnouncesIt(t *testing.T) {
	// arrange
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	userID := givenUser(t, setup, "20201234", core.TierDonorLow)

	// act
	outcome := setup.coordinator.RequestLoan(context.Background(), "20201234", "station-a", "")

	// assert
	assert.True(t, outcome.Authorized)
	assert.Equal(t, coordinator.ReasonNone, outcome.Reason)
	assert.Equal(t, "Loan authorized.", outcome.Message)
	assert.Equal(t, 35, outcome.AllowedMinutes)
	assert.Equal(t, setup.clock.Now().Add(35*time.Minute), outcome.DueAt)
	assert.NotEmpty(t, outcome.LoanID)

	history := fixtures.AllDomainEvents(t, setup.es)
	assert.Equal(t, 2, core.ProjectStationInventory(history, "station-a").AvailableUnits)
	assert.Equal(t, outcome.LoanID, core.ProjectUserLoanState(history, userID.String()).ActiveLoanID)

	sent := setup.notifications.Notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.KindLoanOpened, sent[0].Kind)
	assert.Equal(t, "20201234@campus.example.edu", sent[0].Recipient.Email)
	assert.Equal(t, 35, sent[0].Details.AllowedMinutes)
}

func Test_RequestLoan_Authorized_InvalidatesStationListing(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierFree)
	require.NoError(t, setup.cache.Set(ctx, stationlisting.Stations{Count: 1}))

	// act
	outcome := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "")

	// assert
	require.True(t, outcome.Authorized)
	_, found, err := setup.cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_RequestLoan_Authorized_AnnouncesCommittedLoan_WhenOpenLoanReadFails(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierDonorLow)
	require.NoError(t, setup.cache.Set(ctx, stationlisting.Stations{Count: 1}))

	c, err := coordinator.NewCoordinator(
		coordinator.Handlers{
			UserByStudentCode: userbystudentcode.NewQueryHandler(setup.es),
			OpenLoanForUser:   failingOpenLoanQuery{err: errors.New("replica lagging")},
			LoansByUser:       loansbyuser.NewQueryHandler(setup.es),
			RequestLoan:       requestloan.NewCommandHandler(setup.es),
			ReturnLoan:        returnloan.NewCommandHandler(setup.es),
		},
		coordinator.WithNotifier(setup.notifications),
		coordinator.WithStationCache(setup.cache),
		coordinator.WithClock(setup.clock.Now),
	)
	require.NoError(t, err)

	// act
	outcome := c.RequestLoan(ctx, "20201234", "station-a", "")

	// assert
	require.True(t, outcome.Authorized)
	assert.Equal(t, 35, outcome.AllowedMinutes)
	assert.Equal(t, setup.clock.Now().Add(35*time.Minute), outcome.DueAt)

	sent := setup.notifications.Notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.KindLoanOpened, sent[0].Kind)
	assert.Equal(t, outcome.LoanID, sent[0].LoanID)
	assert.Equal(t, 35, sent[0].Details.AllowedMinutes)
	assert.Equal(t, outcome.DueAt, sent[0].Details.DueAt)

	_, found, err := setup.cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_RequestLoan_Idempotent_WhenRequestIDRepeats(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierFree)
	first := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "req-1")
	require.True(t, first.Authorized)

	// act
	second := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "req-1")

	// assert
	assert.True(t, second.Authorized)
	assert.True(t, second.Idempotent)
	assert.Equal(t, first.LoanID, second.LoanID)
	assert.Equal(t, first.DueAt, second.DueAt)
	assert.Equal(t, 1, fixtures.CountEvents(t, setup.es, core.LoanOpenedEventType))
	assert.Equal(t, 2, core.ProjectStationInventory(fixtures.AllDomainEvents(t, setup.es), "station-a").AvailableUnits)
	assert.Len(t, setup.notifications.Notifications(), 1)
}

func Test_RequestLoan_Denied_OutOfStock(t *testing.T) {
	// arrange
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 0)
	userID := givenUser(t, setup, "20201234", core.TierFree)

	// act
	outcome := setup.coordinator.RequestLoan(context.Background(), "20201234", "station-a", "")

	// assert
	assert.False(t, outcome.Authorized)
	assert.Equal(t, coordinator.ReasonOutOfStock, outcome.Reason)
	assert.Equal(t, coordinator.CategoryConflict, outcome.Reason.Category())
	assert.Equal(t, "No umbrellas available at this station.", outcome.Message)

	history := fixtures.AllDomainEvents(t, setup.es)
	assert.Equal(t, 0, core.ProjectStationInventory(history, "station-a").AvailableUnits)
	assert.False(t, core.ProjectUserLoanState(history, userID.String()).HasActiveLoan)
	assert.Empty(t, setup.notifications.Notifications())
	assert.True(t, setup.logger.HasInfoLog("loan request denied"))
}

func Test_RequestLoan_Denied_UserNotFound(t *testing.T) {
	// arrange
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)

	// act
	outcome := setup.coordinator.RequestLoan(context.Background(), "99999999", "station-a", "")

	// assert
	assert.False(t, outcome.Authorized)
	assert.Equal(t, coordinator.ReasonUserNotFound, outcome.Reason)
	assert.Equal(t, coordinator.CategoryNotFound, outcome.Reason.Category())
	assert.Equal(t, 0, fixtures.CountEvents(t, setup.es, core.LoanOpenedEventType))
}

func Test_RequestLoan_Denied_FineOwedMentionsBalance(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierFree)
	require.True(t, setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "").Authorized)
	setup.clock.Advance(40 * time.Minute)
	require.Equal(t, core.Amount(4000), setup.coordinator.ReturnLoan(ctx, "20201234", "station-a").FineAmount)

	// act
	outcome := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "")

	// assert
	assert.False(t, outcome.Authorized)
	assert.Equal(t, coordinator.ReasonFineOwed, outcome.Reason)
	assert.Equal(t, coordinator.CategoryPaymentRequired, outcome.Reason.Category())
	assert.Equal(t, "You have an outstanding fine of $4000.", outcome.Message)
}

func Test_RequestLoan_Denied_AlreadyLoaned(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierFree)
	require.True(t, setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "").Authorized)

	// act
	outcome := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "")

	// assert
	assert.Equal(t, coordinator.ReasonAlreadyLoaned, outcome.Reason)
	assert.Equal(t, 1, fixtures.CountEvents(t, setup.es, core.LoanOpenedEventType))
}

func Test_RequestLoan_ConcurrentRequestsForLastUnit_ExactlyOneAuthorized(t *testing.T) {
	// arrange
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 1)
	givenUser(t, setup, "20200001", core.TierFree)
	givenUser(t, setup, "20200002", core.TierFree)
	codes := []core.StudentCodeString{"20200001", "20200002"}

	outcomes := make([]coordinator.LoanOutcome, len(codes))
	start := make(chan struct{})
	var wg sync.WaitGroup

	// act
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			outcomes[i] = setup.coordinator.RequestLoan(context.Background(), codes[i], "station-a", "")
		}()
	}
	close(start)
	wg.Wait()

	// assert
	authorized := 0
	for _, outcome := range outcomes {
		if outcome.Authorized {
			authorized++
			continue
		}
		assert.Equal(t, coordinator.ReasonOutOfStock, outcome.Reason)
	}
	assert.Equal(t, 1, authorized)
	assert.Equal(t, 0, core.ProjectStationInventory(fixtures.AllDomainEvents(t, setup.es), "station-a").AvailableUnits)
}

func Test_ReturnLoan_Success_RoundTripRestoresInventory(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 1)
	userID := givenUser(t, setup, "20201234", core.TierFree)
	loan := setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "")
	require.True(t, loan.Authorized)
	setup.clock.Advance(10 * time.Minute)

	// act
	outcome := setup.coordinator.ReturnLoan(ctx, "20201234", "station-a")

	// assert
	assert.True(t, outcome.Success)
	assert.False(t, outcome.AlreadyReturned)
	assert.Equal(t, loan.LoanID, outcome.LoanID)
	assert.Equal(t, core.Amount(0), outcome.FineAmount)
	assert.Equal(t, "Return successful.", outcome.Message)

	history := fixtures.AllDomainEvents(t, setup.es)
	assert.Equal(t, 1, core.ProjectStationInventory(history, "station-a").AvailableUnits)
	assert.False(t, core.ProjectUserLoanState(history, userID.String()).HasActiveLoan)
	assert.Equal(t,
		[]notification.Kind{notification.KindLoanOpened, notification.KindLoanClosed},
		setup.notifications.Kinds(),
	)
}

func Test_ReturnLoan_Success_LateFreeReturnIsFined(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	userID := givenUser(t, setup, "20201234", core.TierFree)
	require.True(t, setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "").Authorized)
	setup.clock.Advance(40 * time.Minute)

	// act
	outcome := setup.coordinator.ReturnLoan(ctx, "20201234", "station-a")

	// assert
	assert.True(t, outcome.Success)
	assert.Equal(t, core.Amount(4000), outcome.FineAmount)
	assert.Equal(t, "Return successful. A late fine was applied.", outcome.Message)
	assert.Equal(t, core.Amount(4000), core.ProjectUserLoanState(fixtures.AllDomainEvents(t, setup.es), userID.String()).FineBalance)
	assert.Equal(t,
		[]notification.Kind{notification.KindLoanOpened, notification.KindLoanClosed, notification.KindFineApplied},
		setup.notifications.Kinds(),
	)
}

func Test_ReturnLoan_Denied_SecondReturnFindsNoActiveLoanAndDoesNotChargeTwice(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	userID := givenUser(t, setup, "20201234", core.TierFree)
	require.True(t, setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "").Authorized)
	setup.clock.Advance(40 * time.Minute)
	require.True(t, setup.coordinator.ReturnLoan(ctx, "20201234", "station-a").Success)

	// act
	outcome := setup.coordinator.ReturnLoan(ctx, "20201234", "station-a")

	// assert
	assert.False(t, outcome.Success)
	assert.Equal(t, coordinator.ReasonNoActiveLoan, outcome.Reason)
	assert.Equal(t, coordinator.CategoryNotFound, outcome.Reason.Category())

	history := fixtures.AllDomainEvents(t, setup.es)
	assert.Equal(t, 1, fixtures.CountEvents(t, setup.es, core.LoanClosedEventType))
	assert.Equal(t, core.Amount(4000), core.ProjectUserLoanState(history, userID.String()).FineBalance)
	assert.Equal(t, 3, core.ProjectStationInventory(history, "station-a").AvailableUnits)
}

func Test_ReturnLoan_Denied_UnknownStation(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 3)
	givenUser(t, setup, "20201234", core.TierFree)
	require.True(t, setup.coordinator.RequestLoan(ctx, "20201234", "station-a", "").Authorized)

	// act
	outcome := setup.coordinator.ReturnLoan(ctx, "20201234", "station-z")

	// assert
	assert.False(t, outcome.Success)
	assert.Equal(t, coordinator.ReasonStationNotFound, outcome.Reason)
	assert.Equal(t, 0, fixtures.CountEvents(t, setup.es, core.LoanClosedEventType))
}

func Test_LendingScenario_CapacityFiveOneAvailable(t *testing.T) {
	// arrange
	ctx := context.Background()
	setup := givenCoordinator(t)
	givenStation(t, setup, "station-a", 5, 1)
	givenUser(t, setup, "20200001", core.TierFree)
	givenUser(t, setup, "20200002", core.TierFree)

	// act
	first := setup.coordinator.RequestLoan(ctx, "20200001", "station-a", "")
	second := setup.coordinator.RequestLoan(ctx, "20200002", "station-a", "")
	setup.clock.Advance(5 * time.Minute)
	returned := setup.coordinator.ReturnLoan(ctx, "20200001", "station-a")
	third := setup.coordinator.RequestLoan(ctx, "20200002", "station-a", "")

	// assert
	assert.True(t, first.Authorized)
	assert.Equal(t, coordinator.ReasonOutOfStock, second.Reason)
	assert.True(t, returned.Success)
	assert.True(t, third.Authorized)
	assert.Equal(t, 0, core.ProjectStationInventory(fixtures.AllDomainEvents(t, setup.es), "station-a").AvailableUnits)
}

func Test_RequestLoan_Denied_InternalErrorHidesDetails(t *testing.T) {
	// arrange
	setup := givenCoordinator(t)
	logger := testdoubles.NewLoggerSpy(true)
	failing, err := coordinator.NewCoordinator(
		coordinator.Handlers{
			UserByStudentCode: failingUserQuery{err: errors.New("connection refused")},
			OpenLoanForUser:   openloanforuser.NewQueryHandler(setup.es),
			LoansByUser:       loansbyuser.NewQueryHandler(setup.es),
			RequestLoan:       requestloan.NewCommandHandler(setup.es),
			ReturnLoan:        returnloan.NewCommandHandler(setup.es),
		},
		coordinator.WithLogger(logger),
	)
	require.NoError(t, err)

	// act
	outcome := failing.RequestLoan(context.Background(), "20201234", "station-a", "")

	// assert
	assert.Equal(t, coordinator.ReasonInternal, outcome.Reason)
	assert.Equal(t, coordinator.CategoryInternal, outcome.Reason.Category())
	assert.Equal(t, "Internal server error.", outcome.Message)
	assert.True(t, logger.HasErrorLog("lending operation failed"))
}

func Test_NewCoordinator_Error_WhenHandlerMissing(t *testing.T) {
	// act
	_, err := coordinator.NewCoordinator(coordinator.Handlers{})

	// assert
	assert.ErrorIs(t, err, coordinator.ErrMissingHandler)
}

type failingUserQuery struct {
	err error
}

func (q failingUserQuery) Handle(context.Context, userbystudentcode.Query) (userbystudentcode.User, error) {
	return userbystudentcode.User{}, q.err
}

type failingOpenLoanQuery struct {
	err error
}

func (q failingOpenLoanQuery) Handle(context.Context, openloanforuser.Query) (openloanforuser.OpenLoan, error) {
	return openloanforuser.OpenLoan{}, q.err
}

var (
	_ shell.QueryHandler[userbystudentcode.Query, userbystudentcode.User]  = failingUserQuery{}
	_ shell.QueryHandler[openloanforuser.Query, openloanforuser.OpenLoan] = failingOpenLoanQuery{}
)

func givenCoordinator(t *testing.T) testSetup {
	t.Helper()

	es := fixtures.NewMemoryEventStore(t)
	clock := &testClock{now: time.Now().UTC().Truncate(time.Microsecond)}
	notifications := testdoubles.NewNotificationSinkSpy(nil)
	cache := stationcache.NewMemoryCache(time.Minute)
	logger := testdoubles.NewLoggerSpy(true)
	fastRetries := shell.WithBaseDelay(time.Millisecond)

	c, err := coordinator.NewCoordinator(
		coordinator.Handlers{
			UserByStudentCode: userbystudentcode.NewQueryHandler(es),
			OpenLoanForUser:   openloanforuser.NewQueryHandler(es),
			LoansByUser:       loansbyuser.NewQueryHandler(es),
			RequestLoan:       requestloan.NewCommandHandler(es, requestloan.WithRetryOptions(fastRetries)),
			ReturnLoan:        returnloan.NewCommandHandler(es, returnloan.WithRetryOptions(fastRetries)),
		},
		coordinator.WithNotifier(notifications),
		coordinator.WithStationCache(cache),
		coordinator.WithLogger(logger),
		coordinator.WithClock(clock.Now),
	)
	require.NoError(t, err)

	return testSetup{
		es:            es,
		coordinator:   c,
		notifications: notifications,
		cache:         cache,
		logger:        logger,
		clock:         clock,
	}
}

func givenStation(t *testing.T, setup testSetup, stationID string, capacity int, available int) {
	t.Helper()

	fixtures.GivenEventsAppended(t, setup.es,
		fixtures.StationRegistered(stationID, capacity, available, setup.clock.Now().Add(-time.Hour)),
	)
}

func givenUser(t *testing.T, setup testSetup, studentCode string, tier core.DonationTier) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	fixtures.GivenEventsAppended(t, setup.es,
		fixtures.UserRegistered(userID, studentCode, tier, setup.clock.Now().Add(-time.Hour)),
	)

	return userID
}
