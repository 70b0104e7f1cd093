// Package fixtures seeds event stores with lending domain events for tests.
//
// Command handler, query handler and coordinator tests build their starting state
// with GivenEventsAppended instead of running the commands that would produce it.
package fixtures
