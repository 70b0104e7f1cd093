// Package memengine provides an in-memory implementation of the event store.
//
// It follows the same Query/Append contract as postgresengine, including
// ErrConcurrencyConflict detection per filtered stream, which makes it usable for
// command handler tests and for running the service locally without a database.
// Data is lost when the process exits.
package memengine
