// Package overdue warns users about loans that are about to be or already are overdue.
//
// A Job pass reads the due-soon loans and enqueues at most one notice per loan and
// stage: DueSoon 15 minutes before the due time, DueSoon 5 minutes before it, and
// FineStarted once the grace period elapsed. Stages are de-duplicated across passes and
// process instances with MarkOnce. The Scheduler runs passes on a cron spec.
package overdue
