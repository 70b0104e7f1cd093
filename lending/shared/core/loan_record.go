package core

import (
	"time"
)

type LoanStatus string

const (
	LoanStatusOpen   LoanStatus = "Open"
	LoanStatusClosed LoanStatus = "Closed"
)

// LoanRecord is one borrowing episode. Once Closed it never changes.
type LoanRecord struct {
	LoanID          LoanIDString
	UserID          UserIDString
	OriginStationID StationIDString
	Tier            DonationTier
	LoanedAt        time.Time
	DueAt           time.Time
	RequestID       string
	Status          LoanStatus
	ReturnedAt      time.Time
	ReturnStationID StationIDString
	FineAmount      Amount
}

// OpenLoan builds the LoanOpened event for a new loan. The due time is fixed by the tier at this moment.
func OpenLoan(
	loanID LoanIDString,
	userID UserIDString,
	stationID StationIDString,
	tier DonationTier,
	requestID string,
	loanedAt time.Time,
) LoanOpened {

	loanedAt = ToOccurredAt(loanedAt)

	return LoanOpened{
		LoanID:         loanID,
		UserID:         userID,
		StationID:      stationID,
		DonationTier:   string(tier),
		AllowedMinutes: int(AllowedDuration(tier) / time.Minute),
		DueAt:          DueAt(loanedAt, tier),
		RequestID:      requestID,
		OccurredAt:     loanedAt,
	}
}

// LoanRecordFrom creates the open record described by a LoanOpened event.
func LoanRecordFrom(e LoanOpened) LoanRecord {
	return LoanRecord{
		LoanID:          e.LoanID,
		UserID:          e.UserID,
		OriginStationID: e.StationID,
		Tier:            ParseDonationTier(e.DonationTier),
		LoanedAt:        e.OccurredAt,
		DueAt:           e.DueAt,
		RequestID:       e.RequestID,
		Status:          LoanStatusOpen,
	}
}

// Apply folds a LoanClosed event of this loan into the record.
func (l *LoanRecord) Apply(event DomainEvent) {
	if e, ok := event.(LoanClosed); ok && e.LoanID == l.LoanID {
		l.Status = LoanStatusClosed
		l.ReturnedAt = e.OccurredAt
		l.ReturnStationID = e.StationID
		l.FineAmount = e.FineAmount
	}
}

func (l LoanRecord) IsOpen() bool {
	return l.Status == LoanStatusOpen
}

// Close builds the LoanClosed event, charging the fine for the tier the loan was opened with.
// It fails with ErrLoanNotOpen for a loan that is already closed.
func (l LoanRecord) Close(returnedAt time.Time, returnStationID StationIDString, unitRestocked bool) (LoanClosed, error) {
	if !l.IsOpen() {
		return LoanClosed{}, ErrLoanNotOpen
	}

	returnedAt = ToOccurredAt(returnedAt)

	return LoanClosed{
		LoanID:          l.LoanID,
		UserID:          l.UserID,
		OriginStationID: l.OriginStationID,
		StationID:       returnStationID,
		LoanedAt:        l.LoanedAt,
		FineAmount:      ComputeFine(l.LoanedAt, returnedAt, l.Tier),
		UnitRestocked:   unitRestocked,
		OccurredAt:      returnedAt,
	}, nil
}

// ProjectLoans replays history into loan records in the order they were opened.
func ProjectLoans(history DomainEvents) []LoanRecord {
	loans := make([]LoanRecord, 0)
	index := make(map[LoanIDString]int)

	for _, event := range history {
		switch e := event.(type) {
		case LoanOpened:
			index[e.LoanID] = len(loans)
			loans = append(loans, LoanRecordFrom(e))

		case LoanClosed:
			if i, ok := index[e.LoanID]; ok {
				loans[i].Apply(e)
			}
		}
	}

	return loans
}

// FindLoan returns the record with loanID from history.
func FindLoan(history DomainEvents, loanID LoanIDString) (LoanRecord, bool) {
	for _, loan := range ProjectLoans(history) {
		if loan.LoanID == loanID {
			return loan, true
		}
	}

	return LoanRecord{}, false
}
