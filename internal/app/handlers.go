package app

import (
	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/features/command/adjuststationstock"
	"github.com/mrcrpro/panaguas/lending/features/command/changedonationtier"
	"github.com/mrcrpro/panaguas/lending/features/command/changestationstatus"
	"github.com/mrcrpro/panaguas/lending/features/command/payfine"
	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/features/command/registeruser"
	"github.com/mrcrpro/panaguas/lending/features/command/requestloan"
	"github.com/mrcrpro/panaguas/lending/features/command/returnloan"
	"github.com/mrcrpro/panaguas/lending/features/query/duesoonloans"
	"github.com/mrcrpro/panaguas/lending/features/query/loansbyuser"
	"github.com/mrcrpro/panaguas/lending/features/query/openloanforuser"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/features/query/userbystudentcode"
	"github.com/mrcrpro/panaguas/lending/features/query/userprofile"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
	"github.com/mrcrpro/panaguas/lending/shared/shell/observable"
	"github.com/mrcrpro/panaguas/lending/shared/shell/snapshot"
)

// Snapshot projection types. Bump the version when the stored shape changes.
const (
	stationListingProjection = "StationListing.v1"
	openLoansProjection      = "OpenLoans.v1"
)

// observability is handed to every wrapper. tracing stays nil when tracing is disabled.
type observability struct {
	metrics     shell.MetricsCollector
	tracing     shell.TracingCollector
	logger      shell.ContextualLogger
	plainLogger shell.Logger
}

// lendingHandlers are the observable command and query handlers of the process.
type lendingHandlers struct {
	requestLoan         shell.CommandHandler[requestloan.Command]
	returnLoan          shell.CommandHandler[returnloan.Command]
	registerStation     shell.CommandHandler[registerstation.Command]
	changeStationStatus shell.CommandHandler[changestationstatus.Command]
	adjustStationStock  shell.CommandHandler[adjuststationstock.Command]
	registerUser        shell.CommandHandler[registeruser.Command]
	changeDonationTier  shell.CommandHandler[changedonationtier.Command]
	payFine             shell.CommandHandler[payfine.Command]

	userByStudentCode shell.QueryHandler[userbystudentcode.Query, userbystudentcode.User]
	openLoanForUser   shell.QueryHandler[openloanforuser.Query, openloanforuser.OpenLoan]
	loansByUser       shell.QueryHandler[loansbyuser.Query, loansbyuser.LoansByUser]
	stationListing    shell.QueryHandler[stationlisting.Query, stationlisting.Stations]
	dueSoonLoans      shell.QueryHandler[duesoonloans.Query, duesoonloans.DueSoonLoans]
	userProfile       shell.QueryHandler[userprofile.Query, userprofile.Profile]
}

func buildHandlers(es EventStore, obs observability, retry []shell.RetryOption) (lendingHandlers, error) {
	var (
		h   lendingHandlers
		err error
	)

	if h.requestLoan, err = wrapCommand[requestloan.Command](
		requestloan.NewCommandHandler(es, requestloan.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.returnLoan, err = wrapCommand[returnloan.Command](
		returnloan.NewCommandHandler(es,
			returnloan.WithRetryOptions(retry...),
			returnloan.WithLogger(obs.plainLogger),
		), obs); err != nil {
		return h, err
	}

	if h.registerStation, err = wrapCommand[registerstation.Command](
		registerstation.NewCommandHandler(es, registerstation.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.changeStationStatus, err = wrapCommand[changestationstatus.Command](
		changestationstatus.NewCommandHandler(es, changestationstatus.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.adjustStationStock, err = wrapCommand[adjuststationstock.Command](
		adjuststationstock.NewCommandHandler(es, adjuststationstock.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.registerUser, err = wrapCommand[registeruser.Command](
		registeruser.NewCommandHandler(es, registeruser.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.changeDonationTier, err = wrapCommand[changedonationtier.Command](
		changedonationtier.NewCommandHandler(es, changedonationtier.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.payFine, err = wrapCommand[payfine.Command](
		payfine.NewCommandHandler(es, payfine.WithRetryOptions(retry...)), obs); err != nil {
		return h, err
	}

	if h.userByStudentCode, err = wrapQuery[userbystudentcode.Query, userbystudentcode.User](
		userbystudentcode.NewQueryHandler(es), obs); err != nil {
		return h, err
	}

	if h.openLoanForUser, err = wrapQuery[openloanforuser.Query, openloanforuser.OpenLoan](
		openloanforuser.NewQueryHandler(es), obs); err != nil {
		return h, err
	}

	if h.loansByUser, err = wrapQuery[loansbyuser.Query, loansbyuser.LoansByUser](
		loansbyuser.NewQueryHandler(es), obs); err != nil {
		return h, err
	}

	stations, err := snapshot.NewQueryWrapper[stationlisting.Query, stationlisting.Stations](
		es,
		stationListingProjection,
		stationlisting.Project,
		func(stationlisting.Query) eventstore.Filter { return stationlisting.BuildEventFilter() },
		snapshot.WithMetrics[stationlisting.Query, stationlisting.Stations](obs.metrics),
		snapshot.WithContextualLogger[stationlisting.Query, stationlisting.Stations](obs.logger),
	)
	if err != nil {
		return h, err
	}

	if h.stationListing, err = wrapQuery[stationlisting.Query, stationlisting.Stations](stations, obs); err != nil {
		return h, err
	}

	openLoans, err := snapshot.NewQueryWrapper[duesoonloans.Query, duesoonloans.OpenLoans](
		es,
		openLoansProjection,
		duesoonloans.ProjectOpenLoans,
		func(duesoonloans.Query) eventstore.Filter { return duesoonloans.BuildEventFilter() },
		snapshot.WithMetrics[duesoonloans.Query, duesoonloans.OpenLoans](obs.metrics),
		snapshot.WithContextualLogger[duesoonloans.Query, duesoonloans.OpenLoans](obs.logger),
	)
	if err != nil {
		return h, err
	}

	if h.dueSoonLoans, err = wrapQuery[duesoonloans.Query, duesoonloans.DueSoonLoans](
		duesoonloans.NewQueryHandler(es, duesoonloans.WithOpenLoans(openLoans)), obs); err != nil {
		return h, err
	}

	if h.userProfile, err = wrapQuery[userprofile.Query, userprofile.Profile](
		userprofile.NewQueryHandler(es), obs); err != nil {
		return h, err
	}

	return h, nil
}

func wrapCommand[C shell.Command](handler shell.CommandHandler[C], obs observability) (shell.CommandHandler[C], error) {
	options := []observable.CommandOption[C]{
		observable.WithCommandMetrics[C](obs.metrics),
		observable.WithCommandContextualLogging[C](obs.logger),
	}
	if obs.tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.tracing))
	}

	wrapper, err := observable.NewCommandWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func wrapQuery[Q shell.Query, R shell.QueryResult](
	handler shell.QueryHandler[Q, R],
	obs observability,
) (shell.QueryHandler[Q, R], error) {

	options := []observable.QueryOption[Q, R]{
		observable.WithQueryMetrics[Q, R](obs.metrics),
		observable.WithQueryContextualLogging[Q, R](obs.logger),
	}
	if obs.tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.tracing))
	}

	wrapper, err := observable.NewQueryWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
