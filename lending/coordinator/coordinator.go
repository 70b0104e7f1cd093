package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/lending/features/command/requestloan"
	"github.com/mrcrpro/panaguas/lending/features/command/returnloan"
	"github.com/mrcrpro/panaguas/lending/features/query/loansbyuser"
	"github.com/mrcrpro/panaguas/lending/features/query/openloanforuser"
	"github.com/mrcrpro/panaguas/lending/features/query/userbystudentcode"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

const (
	invalidationTimeout = 2 * time.Second

	logMsgLoanDenied          = "loan request denied"
	logMsgReturnDenied        = "loan return denied"
	logMsgOperationFailed     = "lending operation failed"
	logMsgInvalidationFailed  = "station cache invalidation failed"
	logMsgNotificationDropped = "notification dropped"
	logMsgFollowUpReadFailed  = "reading loan after commit failed"

	logAttrOperation   = "operation"
	logAttrStudentCode = "student_code"
	logAttrStationID   = "station_id"
	logAttrLoanID      = "loan_id"
	logAttrReason      = "reason"
	logAttrKind        = "kind"

	operationRequestLoan = "RequestLoan"
	operationReturnLoan  = "ReturnLoan"
)

var (
	// ErrMissingHandler is returned by NewCoordinator if one of the Handlers is nil.
	ErrMissingHandler = errors.New("coordinator: missing handler")
)

// StationCacheInvalidator drops cached station listings after inventory changed.
type StationCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Handlers are the command and query handlers the Coordinator is built from.
// They are usually the observable wrappers around the feature handlers.
type Handlers struct {
	UserByStudentCode shell.QueryHandler[userbystudentcode.Query, userbystudentcode.User]
	OpenLoanForUser   shell.QueryHandler[openloanforuser.Query, openloanforuser.OpenLoan]
	LoansByUser       shell.QueryHandler[loansbyuser.Query, loansbyuser.LoansByUser]
	RequestLoan       shell.CommandHandler[requestloan.Command]
	ReturnLoan        shell.CommandHandler[returnloan.Command]
}

// Coordinator runs RequestLoan and ReturnLoan for device calls.
type Coordinator struct {
	handlers     Handlers
	notifier     notification.Notifier
	stationCache StationCacheInvalidator
	logger       shell.ContextualLogger
	now          func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier sets where post-commit notifications are enqueued.
func WithNotifier(notifier notification.Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = notifier
	}
}

// WithStationCache sets the station listing cache that is invalidated after a commit.
func WithStationCache(cache StationCacheInvalidator) Option {
	return func(c *Coordinator) {
		c.stationCache = cache
	}
}

// WithLogger sets a contextual logger.
func WithLogger(logger shell.ContextualLogger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClock replaces the server clock. Loan start and return times always come from it.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(handlers Handlers, opts ...Option) (*Coordinator, error) {
	if handlers.UserByStudentCode == nil ||
		handlers.OpenLoanForUser == nil ||
		handlers.LoansByUser == nil ||
		handlers.RequestLoan == nil ||
		handlers.ReturnLoan == nil {

		return nil, ErrMissingHandler
	}

	c := &Coordinator{
		handlers: handlers,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RequestLoan authorizes a loan for the user with studentCode at stationID.
// A non-empty requestID makes retries of the same device request idempotent.
func (c *Coordinator) RequestLoan(
	ctx context.Context,
	studentCode core.StudentCodeString,
	stationID core.StationIDString,
	requestID string,
) LoanOutcome {

	user, err := c.handlers.UserByStudentCode.Handle(ctx, userbystudentcode.BuildQuery(studentCode))
	if err != nil {
		return c.denyLoan(ctx, err, studentCode, stationID)
	}

	command := requestloan.BuildCommand(user.UserID, stationID, requestID, c.now())

	result, err := c.handlers.RequestLoan.Handle(ctx, command)
	if err != nil {
		return c.denyLoanWithFine(ctx, err, user, stationID)
	}

	outcome := LoanOutcome{
		Authorized: true,
		Idempotent: result.Idempotent,
		Message:    "Loan authorized.",
		LoanID:     command.LoanID.String(),
	}

	if result.Idempotent {
		outcome.Message = "Loan already authorized."

		return c.withOpenLoan(ctx, outcome, user)
	}

	c.invalidateStations(ctx)

	if opened, ok := result.Appended.(core.LoanOpened); ok {
		outcome.LoanID = opened.LoanID
		outcome.AllowedMinutes = opened.AllowedMinutes
		outcome.DueAt = opened.DueAt
	} else {
		outcome = c.withOpenLoan(ctx, outcome, user)
	}

	c.notify(ctx, notification.Notification{
		Kind:      notification.KindLoanOpened,
		Recipient: recipientFrom(user),
		LoanID:    outcome.LoanID,
		Details: notification.Details{
			StationID:      stationID,
			AllowedMinutes: outcome.AllowedMinutes,
			DueAt:          outcome.DueAt,
		},
	})

	return outcome
}

// withOpenLoan fills the loan details of outcome from the user's open loan. Without them the
// outcome stays authorized, the device only misses the due time.
func (c *Coordinator) withOpenLoan(ctx context.Context, outcome LoanOutcome, user userbystudentcode.User) LoanOutcome {
	loan, err := c.handlers.OpenLoanForUser.Handle(ctx, openloanforuser.BuildQuery(user.UserID))
	if err != nil {
		c.logWarn(ctx, logMsgFollowUpReadFailed, logAttrLoanID, outcome.LoanID, shell.LogAttrError, err.Error())

		return outcome
	}

	outcome.LoanID = loan.LoanID
	outcome.AllowedMinutes = int(core.AllowedDuration(loan.Tier).Minutes())
	outcome.DueAt = loan.DueAt

	return outcome
}

// ReturnLoan closes the open loan of the user with studentCode at stationID and finalizes the fine.
func (c *Coordinator) ReturnLoan(
	ctx context.Context,
	studentCode core.StudentCodeString,
	stationID core.StationIDString,
) ReturnOutcome {

	user, err := c.handlers.UserByStudentCode.Handle(ctx, userbystudentcode.BuildQuery(studentCode))
	if err != nil {
		return c.denyReturn(ctx, err, studentCode, stationID)
	}

	loan, err := c.handlers.OpenLoanForUser.Handle(ctx, openloanforuser.BuildQuery(user.UserID))
	if err != nil {
		return c.denyReturn(ctx, err, studentCode, stationID)
	}

	command := returnloan.BuildCommand(user.UserID, loan.LoanID, stationID, c.now())

	result, err := c.handlers.ReturnLoan.Handle(ctx, command)
	if err != nil {
		return c.denyReturn(ctx, err, studentCode, stationID)
	}

	if result.Idempotent {
		return c.alreadyReturned(ctx, user, loan.LoanID)
	}

	fine := core.ComputeFine(loan.LoanedAt, command.OccurredAt, loan.Tier)
	outcome := ReturnOutcome{
		Success:    true,
		Message:    "Return successful.",
		LoanID:     loan.LoanID,
		FineAmount: fine,
		ReturnedAt: command.OccurredAt,
	}

	if fine > 0 {
		outcome.Message = "Return successful. A late fine was applied."
	}

	c.invalidateStations(ctx)

	recipient := recipientFrom(user)
	c.notify(ctx, notification.Notification{
		Kind:      notification.KindLoanClosed,
		Recipient: recipient,
		LoanID:    loan.LoanID,
		Details:   notification.Details{StationID: stationID, FineAmount: fine},
	})

	if fine > 0 {
		c.notify(ctx, notification.Notification{
			Kind:      notification.KindFineApplied,
			Recipient: recipient,
			LoanID:    loan.LoanID,
			Details:   notification.Details{StationID: stationID, FineAmount: fine},
		})
	}

	return outcome
}

// alreadyReturned answers a return that lost the race against a concurrent return of the same loan.
func (c *Coordinator) alreadyReturned(ctx context.Context, user userbystudentcode.User, loanID core.LoanIDString) ReturnOutcome {
	outcome := ReturnOutcome{
		Success:         true,
		AlreadyReturned: true,
		Message:         "Umbrella already returned.",
		LoanID:          loanID,
	}

	loans, err := c.handlers.LoansByUser.Handle(ctx, loansbyuser.BuildQuery(user.UserID, core.LoanStatusClosed))
	if err != nil {
		c.logWarn(ctx, logMsgFollowUpReadFailed, logAttrLoanID, loanID, shell.LogAttrError, err.Error())

		return outcome
	}

	if closed, found := loans.Find(loanID); found {
		outcome.FineAmount = closed.FineAmount
		outcome.ReturnedAt = closed.ReturnedAt
	}

	return outcome
}

func (c *Coordinator) denyLoan(
	ctx context.Context,
	err error,
	studentCode core.StudentCodeString,
	stationID core.StationIDString,
) LoanOutcome {

	reason := c.classify(ctx, operationRequestLoan, err, studentCode, stationID)

	return deniedLoan(reason)
}

func (c *Coordinator) denyLoanWithFine(
	ctx context.Context,
	err error,
	user userbystudentcode.User,
	stationID core.StationIDString,
) LoanOutcome {

	reason := c.classify(ctx, operationRequestLoan, err, user.StudentCode, stationID)
	outcome := deniedLoan(reason)

	if reason != ReasonFineOwed {
		return outcome
	}

	loans, queryErr := c.handlers.LoansByUser.Handle(ctx, loansbyuser.BuildQuery(user.UserID, ""))
	if queryErr == nil && loans.FineBalance > 0 {
		outcome.Message = fineOwedMessage(loans.FineBalance)
	}

	return outcome
}

func (c *Coordinator) denyReturn(
	ctx context.Context,
	err error,
	studentCode core.StudentCodeString,
	stationID core.StationIDString,
) ReturnOutcome {

	reason := c.classify(ctx, operationReturnLoan, err, studentCode, stationID)

	return deniedReturn(reason)
}

func (c *Coordinator) classify(
	ctx context.Context,
	operation string,
	err error,
	studentCode core.StudentCodeString,
	stationID core.StationIDString,
) DenialReason {

	reason := ReasonFor(err)

	if reason == ReasonInternal {
		c.logError(ctx, logMsgOperationFailed,
			logAttrOperation, operation,
			logAttrStudentCode, studentCode,
			logAttrStationID, stationID,
			shell.LogAttrError, err.Error(),
		)

		return reason
	}

	msg := logMsgLoanDenied
	if operation == operationReturnLoan {
		msg = logMsgReturnDenied
	}

	c.logInfo(ctx, msg,
		logAttrStudentCode, studentCode,
		logAttrStationID, stationID,
		logAttrReason, string(reason),
	)

	return reason
}

// invalidateStations runs after the commit. Its failure only costs a stale listing until the TTL expires.
func (c *Coordinator) invalidateStations(ctx context.Context) {
	if c.stationCache == nil {
		return
	}

	invalidationCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
	defer cancel()

	if err := c.stationCache.Invalidate(invalidationCtx); err != nil {
		c.logWarn(ctx, logMsgInvalidationFailed, shell.LogAttrError, err.Error())
	}
}

func (c *Coordinator) notify(ctx context.Context, n notification.Notification) {
	if c.notifier == nil {
		return
	}

	if !c.notifier.Enqueue(n) {
		c.logWarn(ctx, logMsgNotificationDropped, logAttrKind, string(n.Kind), logAttrLoanID, n.LoanID)
	}
}

func recipientFrom(user userbystudentcode.User) notification.Recipient {
	return notification.Recipient{
		UserID: user.UserID.String(),
		Name:   user.Name,
		Email:  user.Email,
	}
}

func (c *Coordinator) logInfo(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.InfoContext(ctx, msg, args...)
	}
}

func (c *Coordinator) logWarn(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, args...)
	}
}

func (c *Coordinator) logError(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.ErrorContext(ctx, msg, args...)
	}
}
