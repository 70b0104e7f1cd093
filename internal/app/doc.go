// Package app wires the configured infrastructure, the lending handlers and the HTTP API
// into one process and owns its lifecycle.
package app
