package coordinator

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// DenialReason says why an operation was not carried out. It is empty on success.
type DenialReason string

const (
	ReasonNone                    DenialReason = ""
	ReasonUserNotFound            DenialReason = "UserNotFound"
	ReasonStationNotFound         DenialReason = "StationNotFound"
	ReasonAlreadyLoaned           DenialReason = "AlreadyLoaned"
	ReasonFineOwed                DenialReason = "FineOwed"
	ReasonOutOfStock              DenialReason = "OutOfStock"
	ReasonStationUnavailable      DenialReason = "StationUnavailable"
	ReasonRequestAlreadyProcessed DenialReason = "RequestAlreadyProcessed"
	ReasonNoActiveLoan            DenialReason = "NoActiveLoan"
	ReasonInternal                DenialReason = "Internal"
)

// Category groups denial reasons for the transport layer.
type Category string

const (
	CategoryNone            Category = ""
	CategoryNotFound        Category = "NotFound"
	CategoryConflict        Category = "Conflict"
	CategoryPaymentRequired Category = "PaymentRequired"
	CategoryUnauthenticated Category = "Unauthenticated"
	CategoryInternal        Category = "Internal"
)

// Category returns the category of r.
func (r DenialReason) Category() Category {
	switch r {
	case ReasonNone:
		return CategoryNone
	case ReasonUserNotFound, ReasonStationNotFound, ReasonNoActiveLoan:
		return CategoryNotFound
	case ReasonAlreadyLoaned, ReasonOutOfStock, ReasonStationUnavailable, ReasonRequestAlreadyProcessed:
		return CategoryConflict
	case ReasonFineOwed:
		return CategoryPaymentRequired
	default:
		return CategoryInternal
	}
}

var reasonsByError = []struct {
	err    error
	reason DenialReason
}{
	{core.ErrUserNotFound, ReasonUserNotFound},
	{core.ErrStationNotFound, ReasonStationNotFound},
	{core.ErrAlreadyLoaned, ReasonAlreadyLoaned},
	{core.ErrFineOwed, ReasonFineOwed},
	{core.ErrOutOfStock, ReasonOutOfStock},
	{core.ErrStationNotOperational, ReasonStationUnavailable},
	{core.ErrRequestAlreadyProcessed, ReasonRequestAlreadyProcessed},
	{core.ErrNoActiveLoan, ReasonNoActiveLoan},
	{core.ErrLoanNotOpen, ReasonNoActiveLoan},
}

// ReasonFor maps a handler error to its denial reason. Unknown errors are ReasonInternal.
func ReasonFor(err error) DenialReason {
	if err == nil {
		return ReasonNone
	}

	for _, candidate := range reasonsByError {
		if errors.Is(err, candidate.err) {
			return candidate.reason
		}
	}

	return ReasonInternal
}

var messages = map[DenialReason]string{
	ReasonUserNotFound:            "User not found.",
	ReasonStationNotFound:         "Station not found.",
	ReasonAlreadyLoaned:           "You already have an active loan.",
	ReasonFineOwed:                "You have an outstanding fine.",
	ReasonOutOfStock:              "No umbrellas available at this station.",
	ReasonStationUnavailable:      "This station is not operational.",
	ReasonRequestAlreadyProcessed: "This request was already processed.",
	ReasonNoActiveLoan:            "No active loan to return.",
	ReasonInternal:                "Internal server error.",
}

// Message returns the caller-facing text of r. It never contains internal details.
func (r DenialReason) Message() string {
	return messages[r]
}

func fineOwedMessage(balance core.Amount) string {
	return fmt.Sprintf("You have an outstanding fine of $%d.", balance)
}

// LoanOutcome is the result of RequestLoan.
type LoanOutcome struct {
	Authorized     bool
	Idempotent     bool
	Reason         DenialReason
	Message        string
	LoanID         core.LoanIDString
	AllowedMinutes int
	DueAt          time.Time
}

// ReturnOutcome is the result of ReturnLoan.
type ReturnOutcome struct {
	Success         bool
	AlreadyReturned bool
	Reason          DenialReason
	Message         string
	LoanID          core.LoanIDString
	FineAmount      core.Amount
	ReturnedAt      time.Time
}

func deniedLoan(reason DenialReason) LoanOutcome {
	return LoanOutcome{Reason: reason, Message: reason.Message()}
}

func deniedReturn(reason DenialReason) ReturnOutcome {
	return ReturnOutcome{Reason: reason, Message: reason.Message()}
}
