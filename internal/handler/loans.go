package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mrcrpro/panaguas/lending/coordinator"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

type requestLoanBody struct {
	StudentCode string `json:"studentCode"`
	StationID   string `json:"stationId"`
	RequestID   string `json:"requestId,omitempty"`
}

type requestLoanResponse struct {
	Authorized     bool       `json:"authorized"`
	Message        string     `json:"message"`
	Reason         string     `json:"reason,omitempty"`
	LoanID         string     `json:"loanId,omitempty"`
	AllowedMinutes int        `json:"allowedMinutes,omitempty"`
	DueAt          *time.Time `json:"dueAt,omitempty"`
}

type returnLoanBody struct {
	StudentCode string `json:"studentCode"`
	StationID   string `json:"stationId"`
}

type returnLoanResponse struct {
	Success         bool         `json:"success"`
	Message         string       `json:"message"`
	Reason          string       `json:"reason,omitempty"`
	LoanID          string       `json:"loanId,omitempty"`
	FineAmount      *core.Amount `json:"fineAmount,omitempty"`
	AlreadyReturned bool         `json:"alreadyReturned,omitempty"`
}

func (h *Handler) requestLoan(w http.ResponseWriter, r *http.Request) {
	var body requestLoanBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, requestLoanResponse{Message: "Invalid request body."})
		return
	}

	studentCode, stationID := strings.TrimSpace(body.StudentCode), strings.TrimSpace(body.StationID)
	if studentCode == "" || stationID == "" {
		writeJSON(w, http.StatusBadRequest, requestLoanResponse{Message: "studentCode and stationId are required."})
		return
	}

	outcome := h.Lending.RequestLoan(r.Context(), studentCode, stationID, strings.TrimSpace(body.RequestID))

	response := requestLoanResponse{
		Authorized: outcome.Authorized,
		Message:    outcome.Message,
		Reason:     string(outcome.Reason),
		LoanID:     outcome.LoanID,
	}

	if outcome.Authorized && !outcome.DueAt.IsZero() {
		dueAt := outcome.DueAt
		response.AllowedMinutes = outcome.AllowedMinutes
		response.DueAt = &dueAt
	}

	writeJSON(w, statusFor(outcome.Reason.Category()), response)
}

func (h *Handler) returnLoan(w http.ResponseWriter, r *http.Request) {
	var body returnLoanBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, returnLoanResponse{Message: "Invalid request body."})
		return
	}

	studentCode, stationID := strings.TrimSpace(body.StudentCode), strings.TrimSpace(body.StationID)
	if studentCode == "" || stationID == "" {
		writeJSON(w, http.StatusBadRequest, returnLoanResponse{Message: "studentCode and stationId are required."})
		return
	}

	outcome := h.Lending.ReturnLoan(r.Context(), studentCode, stationID)

	response := returnLoanResponse{
		Success:         outcome.Success,
		Message:         outcome.Message,
		Reason:          string(outcome.Reason),
		LoanID:          outcome.LoanID,
		AlreadyReturned: outcome.AlreadyReturned,
	}

	if outcome.Success {
		fine := outcome.FineAmount
		response.FineAmount = &fine
	}

	writeJSON(w, statusFor(outcome.Reason.Category()), response)
}

var _ Lending = (*coordinator.Coordinator)(nil)
