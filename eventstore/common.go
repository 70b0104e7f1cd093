package eventstore

import (
	"errors"
)

var (
	// ErrEmptyEventsTableName is returned when an engine is configured with an empty table name.
	ErrEmptyEventsTableName = errors.New("events table name must not be empty")

	// ErrNilDatabaseConnection is returned when an engine is constructed without a database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrConcurrencyConflict is returned by Append when another writer appended an event
	// matching the same filter after the caller queried it.
	ErrConcurrencyConflict = errors.New("concurrency conflict: dynamic event stream was modified")

	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrNoEventsToAppend            = errors.New("no events to append")
)

// MaxSequenceNumberUint is the highest sequence number of a "dynamic event stream" at query time.
type MaxSequenceNumberUint = uint
