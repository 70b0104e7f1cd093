// Package coordinator orchestrates the two device operations, requesting and returning an
// umbrella, on top of the command and query handlers.
//
// Request path: Requested -> Validated -> Committed. The student code is resolved outside
// the transaction, then requestloan re-reads user and station inside its consistency
// boundary and commits a single LoanOpened event.
//
// Return path: ReturnRequested -> Validated -> Committed -> FineFinalized. The open loan is
// looked up, returnloan closes it with the fine at the server's clock, and the fine is
// announced after the commit.
//
// Business denials are Outcomes, not errors. Only infrastructure failures, including
// exhausted concurrency retries, become ReasonInternal. Notifications and cache
// invalidation run after the commit and never change the outcome.
package coordinator
