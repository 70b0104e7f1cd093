package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/lending/coordinator"
	"github.com/mrcrpro/panaguas/lending/features/command/adjuststationstock"
	"github.com/mrcrpro/panaguas/lending/features/command/changedonationtier"
	"github.com/mrcrpro/panaguas/lending/features/command/changestationstatus"
	"github.com/mrcrpro/panaguas/lending/features/command/payfine"
	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/features/command/registeruser"
	"github.com/mrcrpro/panaguas/lending/features/query/loansbyuser"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

// Lending is the device-facing service, implemented by *coordinator.Coordinator.
type Lending interface {
	RequestLoan(
		ctx context.Context,
		studentCode core.StudentCodeString,
		stationID core.StationIDString,
		requestID string,
	) coordinator.LoanOutcome
	ReturnLoan(ctx context.Context, studentCode core.StudentCodeString, stationID core.StationIDString) coordinator.ReturnOutcome
}

// AdminHandlers are the handlers behind the admin API.
type AdminHandlers struct {
	RegisterStation     shell.CommandHandler[registerstation.Command]
	ChangeStationStatus shell.CommandHandler[changestationstatus.Command]
	AdjustStationStock  shell.CommandHandler[adjuststationstock.Command]
	RegisterUser        shell.CommandHandler[registeruser.Command]
	ChangeDonationTier  shell.CommandHandler[changedonationtier.Command]
	PayFine             shell.CommandHandler[payfine.Command]
	LoansByUser         shell.QueryHandler[loansbyuser.Query, loansbyuser.LoansByUser]
}

// Dependencies are the collaborators of a Handler. Notifier and StationCache are optional.
type Dependencies struct {
	Lending      Lending
	Stations     shell.QueryHandler[stationlisting.Query, stationlisting.Stations]
	Admin        AdminHandlers
	StationCache coordinator.StationCacheInvalidator
	Notifier     notification.Notifier
	Logger       *slog.Logger
	Now          func() time.Time
}

// Handler serves the HTTP API.
type Handler struct {
	Dependencies
}

// New creates a Handler.
func New(deps Dependencies) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Handler{Dependencies: deps}
}

// Middlewares wraps route groups. Nil entries are skipped.
type Middlewares struct {
	Recovery   func(http.Handler) http.Handler
	Logging    func(http.Handler) http.Handler
	DeviceAuth func(http.Handler) http.Handler
	RateLimit  func(http.Handler) http.Handler
	AdminAuth  func(http.Handler) http.Handler
}

// Operations are the unauthenticated operational endpoints.
type Operations struct {
	Metrics http.Handler
	Health  func(ctx context.Context) error
}

// Router builds the chi router with all routes.
func (h *Handler) Router(mw Middlewares, ops Operations) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	use(r, mw.Recovery, mw.Logging)

	r.Get("/healthz", h.healthz(ops.Health))
	if ops.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", ops.Metrics)
	}

	r.Route("/stations", func(r chi.Router) {
		r.Get("/", h.listStations)
		r.Get("/{id}", h.getStation)
	})

	r.Group(func(r chi.Router) {
		use(r, mw.RateLimit, mw.DeviceAuth)
		r.Post("/loans", h.requestLoan)
		r.Post("/loans/return", h.returnLoan)
	})

	r.Route("/admin", func(r chi.Router) {
		use(r, mw.AdminAuth)
		r.Post("/stations", h.registerStation)
		r.Put("/stations/{id}/status", h.changeStationStatus)
		r.Put("/stations/{id}/stock", h.adjustStationStock)
		r.Post("/users", h.registerUser)
		r.Put("/users/{id}/tier", h.changeDonationTier)
		r.Post("/users/{id}/fine-payments", h.payFine)
		r.Get("/users/{id}/loans", h.loansByUser)
	})

	return r
}

func use(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}
}

func (h *Handler) healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				h.Logger.WarnContext(r.Context(), "health check failed", slog.String(shell.LogAttrError, err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
