package registeruser

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "RegisterUser"
)

// Command represents the intent to register a user.
type Command struct {
	UserID      uuid.UUID
	StudentCode core.StudentCodeString
	Name        string
	Email       string
	Tier        core.DonationTier
	OccurredAt  core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(
	userID uuid.UUID,
	studentCode core.StudentCodeString,
	name string,
	email string,
	tier core.DonationTier,
	occurredAt time.Time,
) Command {

	return Command{
		UserID:      userID,
		StudentCode: studentCode,
		Name:        name,
		Email:       email,
		Tier:        tier,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}
