package core

import (
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEventType is the event type identifier.
const UserRegisteredEventType = "UserRegistered"

// UserRegistered represents when a student signs up for umbrella lending.
type UserRegistered struct {
	UserID       UserIDString
	StudentCode  StudentCodeString
	Name         string
	Email        string
	DonationTier string
	OccurredAt   OccurredAt
}

// BuildUserRegistered creates a new UserRegistered event.
func BuildUserRegistered(
	userID uuid.UUID,
	studentCode StudentCodeString,
	name string,
	email string,
	tier DonationTier,
	occurredAt time.Time,
) UserRegistered {

	return UserRegistered{
		UserID:       userID.String(),
		StudentCode:  studentCode,
		Name:         name,
		Email:        email,
		DonationTier: string(tier),
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

func (e UserRegistered) EventType() string {
	return UserRegisteredEventType
}

func (e UserRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e UserRegistered) IsErrorEvent() bool {
	return false
}
