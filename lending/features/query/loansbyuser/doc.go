// Package loansbyuser lists the loans of a user, optionally only the open or only the closed ones,
// together with the user's fine balance.
package loansbyuser
