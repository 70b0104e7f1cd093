// Package shell is the imperative shell around the lending core.
//
// It translates between domain events and the storable events of the event store,
// carries event metadata, retries command handlers on concurrency conflicts and
// provides the observability helpers shared by all feature slices.
package shell
