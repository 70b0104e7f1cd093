package overdue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/lending/features/query/duesoonloans"
	"github.com/mrcrpro/panaguas/lending/features/query/userprofile"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

const (
	// FirstWarning and FinalWarning are the due-soon stages.
	FirstWarning = 15 * time.Minute
	FinalWarning = 5 * time.Minute

	defaultMarkTTL = 24 * time.Hour

	logMsgPassCompleted = "overdue pass completed"
	logMsgLoanSkipped   = "overdue notice skipped"
	logAttrNoticeCount  = "notice_count"
	logAttrLoanCount    = "loan_count"
	logAttrLoanID       = "loan_id"
)

// NoticesSentMetric counts the enqueued notices per kind.
const NoticesSentMetric = "overdue_notices_total"

var (
	// ErrMissingDependency is returned by NewJob if a required collaborator is nil.
	ErrMissingDependency = errors.New("overdue: missing dependency")
)

// Marker remembers keys for ttl. MarkOnce reports true only for the first caller.
type Marker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Job is one overdue pass over all loans due within FirstWarning.
type Job struct {
	dueLoans shell.QueryHandler[duesoonloans.Query, duesoonloans.DueSoonLoans]
	profiles shell.QueryHandler[userprofile.Query, userprofile.Profile]
	notifier notification.Notifier
	marker   Marker
	logger   shell.ContextualLogger
	metrics  shell.MetricsCollector
	markTTL  time.Duration
	now      func() time.Time
}

// Option configures a Job.
type Option func(*Job)

// WithLogger sets a contextual logger.
func WithLogger(logger shell.ContextualLogger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

// WithMetrics counts the enqueued notices per kind.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(j *Job) {
		j.metrics = collector
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		j.now = now
	}
}

// NewJob creates a Job.
func NewJob(
	dueLoans shell.QueryHandler[duesoonloans.Query, duesoonloans.DueSoonLoans],
	profiles shell.QueryHandler[userprofile.Query, userprofile.Profile],
	notifier notification.Notifier,
	marker Marker,
	opts ...Option,
) (*Job, error) {

	if dueLoans == nil || profiles == nil || notifier == nil || marker == nil {
		return nil, ErrMissingDependency
	}

	j := &Job{
		dueLoans: dueLoans,
		profiles: profiles,
		notifier: notifier,
		marker:   marker,
		markTTL:  defaultMarkTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

// Run executes one pass and returns the number of enqueued notices.
// Per-loan failures are logged and skipped, only a failing due-loan query aborts the pass.
func (j *Job) Run(ctx context.Context) (int, error) {
	now := j.now()

	due, err := j.dueLoans.Handle(ctx, duesoonloans.BuildQuery(now, FirstWarning))
	if err != nil {
		return 0, err
	}

	sent := 0

	for _, loan := range due.Loans {
		kind, stage, ok := stageOf(loan, now)
		if !ok {
			continue
		}

		notified, noticeErr := j.notifyOnce(ctx, loan, kind, stage)
		if noticeErr != nil {
			j.logWarn(ctx, logMsgLoanSkipped, logAttrLoanID, loan.LoanID, shell.LogAttrError, noticeErr.Error())
			continue
		}

		if notified {
			sent++
		}
	}

	j.logInfo(ctx, logMsgPassCompleted, logAttrLoanCount, due.Count, logAttrNoticeCount, sent)

	return sent, nil
}

// stageOf picks the most urgent stage the loan reached at now.
func stageOf(loan duesoonloans.DueLoan, now time.Time) (notification.Kind, string, bool) {
	switch {
	case !now.Before(loan.FineStartsAt):
		return notification.KindFineStarted, "fine-started", true
	case loan.IsOverdue():
		return "", "", false
	case loan.RemainingFor <= FinalWarning:
		return notification.KindDueSoon, "due-soon-5", true
	default:
		return notification.KindDueSoon, "due-soon-15", true
	}
}

func (j *Job) notifyOnce(ctx context.Context, loan duesoonloans.DueLoan, kind notification.Kind, stage string) (bool, error) {
	userID, err := uuid.Parse(loan.UserID)
	if err != nil {
		return false, fmt.Errorf("loan %s has a malformed user id: %w", loan.LoanID, err)
	}

	profile, err := j.profiles.Handle(ctx, userprofile.BuildQuery(userID))
	if err != nil {
		return false, err
	}

	first, err := j.marker.MarkOnce(ctx, stage+":"+loan.LoanID, j.markTTL)
	if err != nil || !first {
		return false, err
	}

	remaining := int(loan.RemainingFor.Round(time.Minute).Minutes())
	if remaining < 0 {
		remaining = 0
	}

	enqueued := j.notifier.Enqueue(notification.Notification{
		Kind: kind,
		Recipient: notification.Recipient{
			UserID: profile.UserID,
			Name:   profile.Name,
			Email:  profile.Email,
		},
		LoanID: loan.LoanID,
		Details: notification.Details{
			StationID:        loan.StationID,
			AllowedMinutes:   int(core.AllowedDuration(loan.Tier).Minutes()),
			DueAt:            loan.DueAt,
			RemainingMinutes: remaining,
		},
	})

	if enqueued {
		shell.IncrementCounter(ctx, j.metrics, NoticesSentMetric, map[string]string{"kind": string(kind)})
	}

	return enqueued, nil
}

func (j *Job) logInfo(ctx context.Context, msg string, args ...any) {
	if j.logger != nil {
		j.logger.InfoContext(ctx, msg, args...)
	}
}

func (j *Job) logWarn(ctx context.Context, msg string, args ...any) {
	if j.logger != nil {
		j.logger.WarnContext(ctx, msg, args...)
	}
}
