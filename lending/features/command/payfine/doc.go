// Package payfine settles (part of) a user's fine balance. There is no payment provider,
// an administrator records the payment.
package payfine
