package core

import (
	"time"

	"github.com/google/uuid"
)

// Instead of implementing full value objects, some alias types and helper functions are used here ...

type UserIDString = string
type StationIDString = string
type LoanIDString = string
type StudentCodeString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// Amount is a money amount in integer currency units.
type Amount = int64

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// loanIDNamespace scopes deterministic loan ids derived from client request ids.
var loanIDNamespace = uuid.MustParse("2f4c6f0e-6d3b-5c1a-9a57-7d5b0c1e8a44")

// DeterministicLoanID returns the same loan id for the same user and request id,
// which makes a retried loan request land on the loan it already opened.
func DeterministicLoanID(userID UserIDString, requestID string) uuid.UUID {
	return uuid.NewSHA1(loanIDNamespace, []byte(userID+"/"+requestID))
}
