// Package stationlisting projects every registered station with its current stock, display status
// and coordinates. It backs the public station map and is read with eventual consistency.
package stationlisting
