package payfine

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "PayFine"
)

// Command represents a payment against the fine balance of a user.
type Command struct {
	UserID     uuid.UUID
	Amount     core.Amount
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(userID uuid.UUID, amount core.Amount, occurredAt time.Time) Command {
	return Command{
		UserID:     userID,
		Amount:     amount,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
