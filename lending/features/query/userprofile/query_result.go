package userprofile

import (
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// Profile is the projected state of a registered user.
type Profile struct {
	core.UserLoanState
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (p Profile) GetSequenceNumber() uint {
	return p.SequenceNumber
}
