package duesoonloans

import (
	"slices"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

// ProjectDueSoonLoans returns all open loans due at or before query.Now+query.Within,
// overdue ones included.
func ProjectDueSoonLoans(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) DueSoonLoans {
	return SelectDueSoon(ProjectOpenLoans(history, query, maxSequenceNumber, OpenLoans{}), query)
}

// ProjectOpenLoans folds history onto base, e.g. one restored from a snapshot.
// The result does not depend on the query time, which is what makes it snapshottable.
func ProjectOpenLoans(history core.DomainEvents, _ Query, maxSequenceNumber eventstore.MaxSequenceNumberUint, base OpenLoans) OpenLoans {
	loans := slices.Clone(base.Loans)

	for _, event := range history {
		switch e := event.(type) {
		case core.LoanOpened:
			loans = append(loans, core.LoanRecordFrom(e))

		case core.LoanClosed:
			loans = slices.DeleteFunc(loans, func(loan core.LoanRecord) bool {
				return loan.LoanID == e.LoanID
			})
		}
	}

	if loans == nil {
		loans = make([]core.LoanRecord, 0)
	}

	return OpenLoans{
		Loans:          loans,
		SequenceNumber: maxSequenceNumber,
	}
}

// SelectDueSoon picks the loans of open due at or before query.Now+query.Within, ordered by due time.
func SelectDueSoon(open OpenLoans, query Query) DueSoonLoans {
	horizon := query.Now.Add(query.Within)
	loans := make([]DueLoan, 0)

	for _, loan := range open.Loans {
		if loan.DueAt.After(horizon) {
			continue
		}

		loans = append(loans, DueLoan{
			LoanID:       loan.LoanID,
			UserID:       loan.UserID,
			StationID:    loan.OriginStationID,
			Tier:         loan.Tier,
			LoanedAt:     loan.LoanedAt,
			DueAt:        loan.DueAt,
			FineStartsAt: core.FineStartsAt(loan.LoanedAt, loan.Tier),
			RemainingFor: loan.DueAt.Sub(query.Now),
		})
	}

	slices.SortFunc(loans, func(a, b DueLoan) int {
		return a.DueAt.Compare(b.DueAt)
	})

	return DueSoonLoans{
		Loans:          loans,
		Count:          len(loans),
		SequenceNumber: open.SequenceNumber,
	}
}

// BuildEventFilter creates the filter for all loan events.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanOpenedEventType,
			core.LoanClosedEventType,
		).
		Finalize()
}
