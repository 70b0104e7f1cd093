package loansbyuser

import (
	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ProjectLoansByUser builds the loan list of the queried user.
//
// Query Logic:
//
//	GIVEN: a user with UserID
//	WHEN: LoansByUser query is executed
//	THEN: all loans of the user are returned, oldest first
//	FILTER: only loans with Status if it is set
//	INCLUDES: the fine balance after all fines and payments
func ProjectLoansByUser(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) LoansByUser {
	userID := query.UserID.String()
	loans := make([]core.LoanRecord, 0)

	for _, loan := range core.ProjectLoans(history) {
		if loan.UserID != userID {
			continue
		}

		if query.Status != "" && loan.Status != query.Status {
			continue
		}

		loans = append(loans, loan)
	}

	return LoansByUser{
		UserID:         userID,
		Loans:          loans,
		Count:          len(loans),
		FineBalance:    core.ProjectUserLoanState(history, userID).FineBalance,
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter creates the filter for the loans and fine payments of the user.
func BuildEventFilter(query Query) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
			core.FinePaidEventType,
		).
		AndAnyPredicateOf(eventstore.P("UserID", query.UserID.String())).
		Finalize()
}
