package changedonationtier

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "ChangeDonationTier"
)

// Command represents the intent to change the donation tier of a user.
type Command struct {
	UserID     uuid.UUID
	Tier       core.DonationTier
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(userID uuid.UUID, tier core.DonationTier, occurredAt time.Time) Command {
	return Command{
		UserID:     userID,
		Tier:       tier,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
