package openloanforuser

import (
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// OpenLoan is the open loan record of the user.
type OpenLoan struct {
	core.LoanRecord
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (l OpenLoan) GetSequenceNumber() uint {
	return l.SequenceNumber
}
