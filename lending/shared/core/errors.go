package core

import "errors"

// Business rule violations. Decide functions wrap them with the failure event type,
// callers match them with errors.Is.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserAlreadyRegistered   = errors.New("user is already registered")
	ErrStudentCodeTaken        = errors.New("student code is already registered")
	ErrStationNotFound         = errors.New("station not found")
	ErrStationAlreadyExists    = errors.New("station is already registered")
	ErrAlreadyLoaned           = errors.New("user already has an active loan")
	ErrFineOwed                = errors.New("user has an outstanding fine")
	ErrOutOfStock              = errors.New("station has no umbrellas available")
	ErrStationNotOperational   = errors.New("station is not operational")
	ErrNoActiveLoan            = errors.New("user has no active loan")
	ErrLoanNotOpen             = errors.New("loan is not open")
	ErrRequestAlreadyProcessed = errors.New("loan request was already processed")
	ErrInvalidCapacity         = errors.New("capacity and available units must satisfy 0 <= available <= capacity")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrFineOverpayment         = errors.New("payment exceeds the outstanding fine")
	ErrInvalidStatus           = errors.New("unknown operational status")
)

var businessRuleViolations = []error{
	ErrUserNotFound, ErrUserAlreadyRegistered, ErrStudentCodeTaken,
	ErrStationNotFound, ErrStationAlreadyExists,
	ErrAlreadyLoaned, ErrFineOwed, ErrOutOfStock, ErrStationNotOperational,
	ErrNoActiveLoan, ErrLoanNotOpen, ErrRequestAlreadyProcessed,
	ErrInvalidCapacity, ErrInvalidAmount, ErrFineOverpayment, ErrInvalidStatus,
}

// IsBusinessRuleViolation reports whether err is (or wraps) one of the errors above.
func IsBusinessRuleViolation(err error) bool {
	for _, violation := range businessRuleViolations {
		if errors.Is(err, violation) {
			return true
		}
	}

	return false
}
