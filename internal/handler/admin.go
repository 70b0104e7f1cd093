package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/internal/middleware"
	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/lending/features/command/adjuststationstock"
	"github.com/mrcrpro/panaguas/lending/features/command/changedonationtier"
	"github.com/mrcrpro/panaguas/lending/features/command/changestationstatus"
	"github.com/mrcrpro/panaguas/lending/features/command/payfine"
	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/features/command/registeruser"
	"github.com/mrcrpro/panaguas/lending/features/query/loansbyuser"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

type registerStationBody struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Capacity       int     `json:"capacity"`
	AvailableUnits int     `json:"availableUnits"`
}

type stationStatusBody struct {
	Status string `json:"status"`
}

type stationStockBody struct {
	Capacity       int `json:"capacity"`
	AvailableUnits int `json:"availableUnits"`
}

type registerUserBody struct {
	UserID      string `json:"userId,omitempty"`
	StudentCode string `json:"studentCode"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Tier        string `json:"tier,omitempty"`
}

type donationTierBody struct {
	Tier string `json:"tier"`
}

type finePaymentBody struct {
	Amount core.Amount `json:"amount"`
}

type commandResponse struct {
	ID         string `json:"id"`
	Idempotent bool   `json:"idempotent"`
}

type finePaymentResponse struct {
	UserID      string      `json:"userId"`
	FineBalance core.Amount `json:"fineBalance"`
}

type loanResponse struct {
	LoanID          string     `json:"loanId"`
	StationID       string     `json:"stationId"`
	Tier            string     `json:"tier"`
	Status          string     `json:"status"`
	LoanedAt        time.Time  `json:"loanedAt"`
	DueAt           time.Time  `json:"dueAt"`
	ReturnedAt      *time.Time `json:"returnedAt,omitempty"`
	ReturnStationID string     `json:"returnStationId,omitempty"`
	FineAmount      int64      `json:"fineAmount"`
}

type loansResponse struct {
	UserID      string         `json:"userId"`
	Loans       []loanResponse `json:"loans"`
	Count       int            `json:"count"`
	FineBalance core.Amount    `json:"fineBalance"`
}

func (h *Handler) registerStation(w http.ResponseWriter, r *http.Request) {
	var body registerStationBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "Invalid request body.")
		return
	}

	if strings.TrimSpace(body.ID) == "" || strings.TrimSpace(body.Name) == "" {
		writeBadRequest(w, "id and name are required.")
		return
	}

	command := registerstation.BuildCommand(
		strings.TrimSpace(body.ID),
		body.Name,
		body.Location,
		body.Latitude,
		body.Longitude,
		body.Capacity,
		body.AvailableUnits,
		h.Now(),
	)

	result, err := h.Admin.RegisterStation.Handle(r.Context(), command)
	if err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	h.afterStationChange(r.Context(), result)
	writeJSON(w, createdOrOK(result), commandResponse{ID: command.StationID, Idempotent: result.Idempotent})
}

func (h *Handler) changeStationStatus(w http.ResponseWriter, r *http.Request) {
	var body stationStatusBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "Invalid request body.")
		return
	}

	status, err := core.ParseOperationalStatus(body.Status)
	if err != nil {
		writeBadRequest(w, "status must be Operational, Maintenance or Unknown.")
		return
	}

	command := changestationstatus.BuildCommand(chi.URLParam(r, "id"), status, h.Now())

	result, err := h.Admin.ChangeStationStatus.Handle(r.Context(), command)
	if err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	h.afterStationChange(r.Context(), result)
	writeJSON(w, http.StatusOK, commandResponse{ID: command.StationID, Idempotent: result.Idempotent})
}

func (h *Handler) adjustStationStock(w http.ResponseWriter, r *http.Request) {
	var body stationStockBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "Invalid request body.")
		return
	}

	command := adjuststationstock.BuildCommand(chi.URLParam(r, "id"), body.Capacity, body.AvailableUnits, h.Now())

	result, err := h.Admin.AdjustStationStock.Handle(r.Context(), command)
	if err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	h.afterStationChange(r.Context(), result)
	writeJSON(w, http.StatusOK, commandResponse{ID: command.StationID, Idempotent: result.Idempotent})
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var body registerUserBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "Invalid request body.")
		return
	}

	if strings.TrimSpace(body.StudentCode) == "" || strings.TrimSpace(body.Name) == "" {
		writeBadRequest(w, "studentCode and name are required.")
		return
	}

	userID := uuid.New()
	if body.UserID != "" {
		parsed, err := uuid.Parse(body.UserID)
		if err != nil {
			writeBadRequest(w, "userId must be a UUID.")
			return
		}

		userID = parsed
	}

	command := registeruser.BuildCommand(
		userID,
		strings.TrimSpace(body.StudentCode),
		body.Name,
		strings.TrimSpace(body.Email),
		core.ParseDonationTier(body.Tier),
		h.Now(),
	)

	result, err := h.Admin.RegisterUser.Handle(r.Context(), command)
	if err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	if !result.Idempotent && h.Notifier != nil {
		h.Notifier.Enqueue(notification.Notification{
			Kind: notification.KindWelcome,
			Recipient: notification.Recipient{
				UserID: userID.String(),
				Name:   command.Name,
				Email:  command.Email,
			},
		})
	}

	writeJSON(w, createdOrOK(result), commandResponse{ID: userID.String(), Idempotent: result.Idempotent})
}

func (h *Handler) changeDonationTier(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var body donationTierBody
	if err := decodeJSON(r, &body); err != nil || strings.TrimSpace(body.Tier) == "" {
		writeBadRequest(w, "tier is required.")
		return
	}

	command := changedonationtier.BuildCommand(userID, core.ParseDonationTier(body.Tier), h.Now())

	result, err := h.Admin.ChangeDonationTier.Handle(r.Context(), command)
	if err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{ID: userID.String(), Idempotent: result.Idempotent})
}

func (h *Handler) payFine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var body finePaymentBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "Invalid request body.")
		return
	}

	command := payfine.BuildCommand(userID, body.Amount, h.Now())

	if _, err := h.Admin.PayFine.Handle(r.Context(), command); err != nil {
		h.writeAdminError(w, r, command.CommandType(), err)
		return
	}

	loans, err := h.Admin.LoansByUser.Handle(r.Context(), loansbyuser.BuildQuery(userID, ""))
	if err != nil {
		h.writeAdminError(w, r, "LoansByUser", err)
		return
	}

	writeJSON(w, http.StatusOK, finePaymentResponse{UserID: userID.String(), FineBalance: loans.FineBalance})
}

func (h *Handler) loansByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var status core.LoanStatus
	switch strings.ToLower(r.URL.Query().Get("status")) {
	case "":
	case "open":
		status = core.LoanStatusOpen
	case "closed":
		status = core.LoanStatusClosed
	default:
		writeBadRequest(w, "status must be open or closed.")
		return
	}

	loans, err := h.Admin.LoansByUser.Handle(r.Context(), loansbyuser.BuildQuery(userID, status))
	if err != nil {
		h.writeAdminError(w, r, "LoansByUser", err)
		return
	}

	response := loansResponse{
		UserID:      userID.String(),
		Loans:       make([]loanResponse, 0, len(loans.Loans)),
		Count:       loans.Count,
		FineBalance: loans.FineBalance,
	}

	for _, loan := range loans.Loans {
		item := loanResponse{
			LoanID:          loan.LoanID,
			StationID:       loan.OriginStationID,
			Tier:            string(loan.Tier),
			Status:          string(loan.Status),
			LoanedAt:        loan.LoanedAt,
			DueAt:           loan.DueAt,
			ReturnStationID: loan.ReturnStationID,
			FineAmount:      loan.FineAmount,
		}

		if !loan.ReturnedAt.IsZero() {
			returnedAt := loan.ReturnedAt
			item.ReturnedAt = &returnedAt
		}

		response.Loans = append(response.Loans, item)
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) afterStationChange(ctx context.Context, result shell.HandlerResult) {
	if result.Idempotent || h.StationCache == nil {
		return
	}

	if err := h.StationCache.Invalidate(ctx); err != nil {
		h.Logger.WarnContext(ctx, "station cache invalidation failed", slog.String(shell.LogAttrError, err.Error()))
	}
}

func (h *Handler) writeAdminError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code, message := adminErrorResponse(err)

	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "admin operation failed",
			slog.String("operation", operation),
			slog.String(shell.LogAttrError, err.Error()),
		)
	}

	middleware.WriteError(w, status, code, message)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "user id must be a UUID.")
		return uuid.UUID{}, false
	}

	return userID, true
}

func createdOrOK(result shell.HandlerResult) int {
	if result.Idempotent {
		return http.StatusOK
	}

	return http.StatusCreated
}
