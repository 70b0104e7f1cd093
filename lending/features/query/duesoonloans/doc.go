// Package duesoonloans lists open loans that are due within a horizon or already overdue.
// The overdue warning job uses it to decide which reminders to send.
package duesoonloans
