// Package userbystudentcode resolves the student code a device reads into the registered user.
//
// Student codes are unique by construction (registeruser guards them), but if the log
// ever holds two registrations for the same code, the one registered first wins.
package userbystudentcode
