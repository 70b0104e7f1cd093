package overdue

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

const (
	defaultPassTimeout = 30 * time.Second

	logMsgPassFailed = "overdue pass failed"
)

// ErrAlreadyStarted is returned by Start on a running Scheduler.
var ErrAlreadyStarted = errors.New("overdue: scheduler already started")

// Scheduler runs a Job on a cron spec. Overlapping passes are skipped.
type Scheduler struct {
	cron        *cron.Cron
	job         *Job
	logger      shell.ContextualLogger
	passTimeout time.Duration
	started     bool
}

// NewScheduler parses spec (standard five fields or descriptors like "@every 1m") and registers job.
func NewScheduler(job *Job, spec string, logger shell.ContextualLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		job:         job,
		logger:      logger,
		passTimeout: defaultPassTimeout,
	}

	if _, err := s.cron.AddFunc(spec, s.runPass); err != nil {
		return nil, err
	}

	return s, nil
}

// Start starts the cron loop in its own goroutine.
func (s *Scheduler) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}

	s.started = true
	s.cron.Start()

	return nil
}

// Stop stops scheduling and waits for a running pass until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
	defer cancel()

	if _, err := s.job.Run(ctx); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, logMsgPassFailed, shell.LogAttrError, err.Error())
	}
}
