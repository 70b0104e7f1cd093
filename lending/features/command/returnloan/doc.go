// Package returnloan implements bringing an umbrella back to a station.
//
// The return station may differ from the origin station. The decision reads the
// user's loans and the return station's inventory from one dynamic event stream
// and appends a single LoanClosed event, which closes the loan with its fine, clears
// the user's active loan, adds the fine to the balance and restocks the return station
// unless it is full. Returning an already closed loan is idempotent.
package returnloan
