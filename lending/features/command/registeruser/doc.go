// Package registeruser signs up a student for umbrella lending.
//
// The stream covers registrations with the user id OR the student code, which keeps
// student codes unique under concurrent sign-ups.
package registeruser
