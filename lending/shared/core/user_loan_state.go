package core

// UserLoanState is the loan-relevant state of one user, projected from its events.
// Invariant: HasActiveLoan is true iff exactly one loan of the user is open.
type UserLoanState struct {
	UserID        UserIDString
	StudentCode   StudentCodeString
	Name          string
	Email         string
	Tier          DonationTier
	Registered    bool
	HasActiveLoan bool
	ActiveLoanID  LoanIDString
	FineBalance   Amount
}

// ProjectUserLoanState replays history for userID.
func ProjectUserLoanState(history DomainEvents, userID UserIDString) UserLoanState {
	u := UserLoanState{UserID: userID, Tier: TierFree}

	for _, event := range history {
		u.Apply(event)
	}

	return u
}

// Apply folds one event into the state. Events of other users are ignored.
func (u *UserLoanState) Apply(event DomainEvent) {
	switch e := event.(type) {
	case UserRegistered:
		if e.UserID == u.UserID {
			u.Registered = true
			u.StudentCode = e.StudentCode
			u.Name = e.Name
			u.Email = e.Email
			u.Tier = ParseDonationTier(e.DonationTier)
		}

	case DonationTierChanged:
		if e.UserID == u.UserID {
			u.Tier = ParseDonationTier(e.DonationTier)
		}

	case FinePaid:
		if e.UserID == u.UserID {
			u.FineBalance = max(0, u.FineBalance-e.Amount)
		}

	case LoanOpened:
		if e.UserID == u.UserID {
			u.HasActiveLoan = true
			u.ActiveLoanID = e.LoanID
		}

	case LoanClosed:
		if e.UserID == u.UserID {
			u.MarkReturned()
			u.AddFine(e.FineAmount)
		}
	}
}

// MarkLoaned fails with ErrAlreadyLoaned if the user already holds an umbrella.
func (u *UserLoanState) MarkLoaned(loanID LoanIDString) error {
	if u.HasActiveLoan {
		return ErrAlreadyLoaned
	}

	u.HasActiveLoan = true
	u.ActiveLoanID = loanID

	return nil
}

// MarkReturned clears the active loan. Idempotent.
func (u *UserLoanState) MarkReturned() {
	u.HasActiveLoan = false
	u.ActiveLoanID = ""
}

// AddFine adds a non-negative amount to the balance.
func (u *UserLoanState) AddFine(amount Amount) {
	if amount <= 0 {
		return
	}

	u.FineBalance += amount
}

func (u *UserLoanState) HasOutstandingFine() bool {
	return u.FineBalance > 0
}

// SettleFine deducts a payment. It may not exceed the balance.
func (u *UserLoanState) SettleFine(amount Amount) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > u.FineBalance {
		return ErrFineOverpayment
	}

	u.FineBalance -= amount

	return nil
}
