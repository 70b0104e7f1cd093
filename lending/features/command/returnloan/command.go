package returnloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent of a user to return the umbrella of LoanID at StationID.
type Command struct {
	UserID     uuid.UUID
	LoanID     core.LoanIDString
	StationID  core.StationIDString
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(
	userID uuid.UUID,
	loanID core.LoanIDString,
	stationID core.StationIDString,
	occurredAt time.Time,
) Command {

	return Command{
		UserID:     userID,
		LoanID:     loanID,
		StationID:  stationID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
