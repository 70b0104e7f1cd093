package core

import (
	"time"

	"github.com/google/uuid"
)

// FinePaidEventType is the event type identifier.
const FinePaidEventType = "FinePaid"

// FinePaid represents a settlement of (part of) a user's fine balance.
type FinePaid struct {
	UserID     UserIDString
	Amount     Amount
	OccurredAt OccurredAt
}

// BuildFinePaid creates a new FinePaid event.
func BuildFinePaid(userID uuid.UUID, amount Amount, occurredAt time.Time) FinePaid {
	return FinePaid{
		UserID:     userID.String(),
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e FinePaid) EventType() string {
	return FinePaidEventType
}

func (e FinePaid) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e FinePaid) IsErrorEvent() bool {
	return false
}
