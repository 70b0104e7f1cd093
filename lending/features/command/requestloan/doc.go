// Package requestloan implements handing out an umbrella at a station.
//
// The decision reads the user's loan state and the station's inventory from one
// dynamic event stream (all loan-relevant events of the user OR the station) and
// appends a single LoanOpened event. That one event opens the loan, marks the user
// as borrowing and takes the unit out of the station, so all three commit together
// or not at all. Two devices racing for the same user or the last unit of a station
// collide on the stream and the loser is retried against the new state.
package requestloan
