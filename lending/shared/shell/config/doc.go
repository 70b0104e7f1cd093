// Package config builds the infrastructure clients of the lending service:
// Postgres connection pools for the three event store adapters and the OpenTelemetry tracer provider.
package config
