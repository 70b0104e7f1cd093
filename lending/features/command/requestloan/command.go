package requestloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	commandType = "RequestLoan"
)

// Command represents the intent of a user to borrow an umbrella at a station.
// RequestID is the optional idempotency key sent by the device.
type Command struct {
	LoanID     uuid.UUID
	UserID     uuid.UUID
	StationID  core.StationIDString
	RequestID  string
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. With a RequestID the loan id is derived from it,
// so a retried request targets the loan it may already have opened. Without one every
// command gets a fresh loan id.
func BuildCommand(userID uuid.UUID, stationID core.StationIDString, requestID string, occurredAt time.Time) Command {
	loanID := uuid.New()
	if requestID != "" {
		loanID = core.DeterministicLoanID(userID.String(), requestID)
	}

	return Command{
		LoanID:     loanID,
		UserID:     userID,
		StationID:  stationID,
		RequestID:  requestID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
