// Package testdoubles provides spies for the observability interfaces and the notification sink.
//
// All spies are safe for concurrent use, since the code under test records from goroutines.
package testdoubles
