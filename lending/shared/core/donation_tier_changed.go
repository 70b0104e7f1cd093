package core

import (
	"time"

	"github.com/google/uuid"
)

// DonationTierChangedEventType is the event type identifier.
const DonationTierChangedEventType = "DonationTierChanged"

// DonationTierChanged represents when a user's donation tier changes.
// Loans already open keep the tier they were opened with.
type DonationTierChanged struct {
	UserID       UserIDString
	DonationTier string
	OccurredAt   OccurredAt
}

// BuildDonationTierChanged creates a new DonationTierChanged event.
func BuildDonationTierChanged(userID uuid.UUID, tier DonationTier, occurredAt time.Time) DonationTierChanged {
	return DonationTierChanged{
		UserID:       userID.String(),
		DonationTier: string(tier),
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

func (e DonationTierChanged) EventType() string {
	return DonationTierChangedEventType
}

func (e DonationTierChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e DonationTierChanged) IsErrorEvent() bool {
	return false
}
