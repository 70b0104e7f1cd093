// Package userprofile reads the contact data and loan state of one user.
// The overdue job uses it to address warnings.
package userprofile
