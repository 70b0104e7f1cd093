package notification

import (
	"context"
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Kind names what happened.
type Kind string

const (
	KindWelcome     Kind = "Welcome"
	KindLoanOpened  Kind = "LoanOpened"
	KindLoanClosed  Kind = "LoanClosed"
	KindFineApplied Kind = "FineApplied"
	KindDueSoon     Kind = "DueSoon"
	KindFineStarted Kind = "FineStarted"
)

// Recipient is the user a notice is addressed to.
type Recipient struct {
	UserID core.UserIDString
	Name   string
	Email  string
}

// Details carries the loan facts a notice mentions. Fields irrelevant for a Kind stay zero.
type Details struct {
	StationID        core.StationIDString
	AllowedMinutes   int
	DueAt            time.Time
	FineAmount       core.Amount
	RemainingMinutes int
}

// Notification is one notice for one user.
type Notification struct {
	Kind      Kind
	Recipient Recipient
	LoanID    core.LoanIDString
	Details   Details
}

// Sink delivers a notification to the user.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier accepts notifications for asynchronous delivery. Enqueue reports false if the notice was dropped.
type Notifier interface {
	Enqueue(n Notification) bool
}
