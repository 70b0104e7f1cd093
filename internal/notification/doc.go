// Package notification delivers user notices after a loan was committed.
//
// Notices are enqueued on a bounded Dispatcher and delivered by a pool of workers to a
// Sink (SMTP email or log). Enqueueing never blocks: when the queue is full the notice is
// dropped and counted. Sink failures are logged and never reach the caller.
package notification
