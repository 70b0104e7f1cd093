package handler

import (
	"errors"
	"net/http"

	"github.com/mrcrpro/panaguas/lending/coordinator"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const internalErrorMessage = "Internal server error."

var statusByCategory = map[coordinator.Category]int{
	coordinator.CategoryNone:            http.StatusOK,
	coordinator.CategoryNotFound:        http.StatusNotFound,
	coordinator.CategoryConflict:        http.StatusConflict,
	coordinator.CategoryPaymentRequired: http.StatusPaymentRequired,
	coordinator.CategoryUnauthenticated: http.StatusUnauthorized,
	coordinator.CategoryInternal:        http.StatusInternalServerError,
}

// statusFor maps an outcome category to its HTTP status.
func statusFor(category coordinator.Category) int {
	if status, ok := statusByCategory[category]; ok {
		return status
	}

	return http.StatusInternalServerError
}

var adminErrors = []struct {
	err    error
	status int
	code   string
}{
	{core.ErrStationNotFound, http.StatusNotFound, "not_found"},
	{core.ErrUserNotFound, http.StatusNotFound, "not_found"},
	{core.ErrStationAlreadyExists, http.StatusConflict, "conflict"},
	{core.ErrUserAlreadyRegistered, http.StatusConflict, "conflict"},
	{core.ErrStudentCodeTaken, http.StatusConflict, "conflict"},
	{core.ErrInvalidCapacity, http.StatusUnprocessableEntity, "invalid_value"},
	{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_value"},
	{core.ErrFineOverpayment, http.StatusUnprocessableEntity, "invalid_value"},
	{core.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_value"},
}

// adminErrorResponse maps an admin command error to status, code and a caller-safe message.
func adminErrorResponse(err error) (int, string, string) {
	for _, candidate := range adminErrors {
		if errors.Is(err, candidate.err) {
			return candidate.status, candidate.code, candidate.err.Error()
		}
	}

	return http.StatusInternalServerError, "internal", internalErrorMessage
}
