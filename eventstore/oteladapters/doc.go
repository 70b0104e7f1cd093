// Package oteladapters implements the eventstore observability interfaces on top of OpenTelemetry.
package oteladapters
