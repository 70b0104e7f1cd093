// Package changedonationtier sets the donation tier of a user. The new tier applies to loans
// opened afterwards, an open loan keeps the window it was opened with.
package changedonationtier
