package userbystudentcode

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// User is the registration a student code belongs to.
type User struct {
	UserID         uuid.UUID
	StudentCode    core.StudentCodeString
	Name           string
	Email          string
	RegisteredAt   time.Time
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number the result was projected from.
func (u User) GetSequenceNumber() uint {
	return u.SequenceNumber
}
