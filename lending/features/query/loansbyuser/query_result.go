package loansbyuser

import (
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// LoansByUser holds the loans of a user in the order they were opened.
type LoansByUser struct {
	UserID         core.UserIDString
	Loans          []core.LoanRecord
	Count          int
	FineBalance    core.Amount
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (r LoansByUser) GetSequenceNumber() uint {
	return r.SequenceNumber
}

// Find returns the loan with loanID.
func (r LoansByUser) Find(loanID core.LoanIDString) (core.LoanRecord, bool) {
	for _, loan := range r.Loans {
		if loan.LoanID == loanID {
			return loan, true
		}
	}

	return core.LoanRecord{}, false
}
