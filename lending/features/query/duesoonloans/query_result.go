package duesoonloans

import (
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// DueLoan is an open loan close to or past its due time.
type DueLoan struct {
	LoanID       core.LoanIDString
	UserID       core.UserIDString
	StationID    core.StationIDString
	Tier         core.DonationTier
	LoanedAt     time.Time
	DueAt        time.Time
	FineStartsAt time.Time
	RemainingFor time.Duration
}

// IsOverdue reports whether the loan is past its due time at the query time.
func (l DueLoan) IsOverdue() bool {
	return l.RemainingFor < 0
}

// DueSoonLoans holds the matching loans ordered by due time.
type DueSoonLoans struct {
	Loans          []DueLoan
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (r DueSoonLoans) GetSequenceNumber() uint {
	return r.SequenceNumber
}

// OpenLoans is every loan not returned yet, in the order they were opened.
type OpenLoans struct {
	Loans          []core.LoanRecord `json:"loans"`
	SequenceNumber uint              `json:"sequenceNumber"`
}

// GetSequenceNumber returns the sequence number the state was projected from.
func (o OpenLoans) GetSequenceNumber() uint {
	return o.SequenceNumber
}
