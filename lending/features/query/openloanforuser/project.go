package openloanforuser

import (
	"fmt"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ProjectOpenLoan returns the open loan of the queried user or core.ErrNoActiveLoan.
func ProjectOpenLoan(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) (OpenLoan, error) {
	for _, loan := range core.ProjectLoans(history) {
		if loan.UserID == query.UserID.String() && loan.IsOpen() {
			return OpenLoan{LoanRecord: loan, SequenceNumber: maxSequenceNumber}, nil
		}
	}

	return OpenLoan{}, fmt.Errorf("%s: %w", queryType, core.ErrNoActiveLoan)
}

// BuildEventFilter creates the filter for all loans of the user.
func BuildEventFilter(query Query) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		AndAnyPredicateOf(eventstore.P("UserID", query.UserID.String())).
		Finalize()
}
