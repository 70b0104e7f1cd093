package loansbyuser

import (
	"github.com/google/uuid"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	queryType = "LoansByUser"
)

// Query represents the intent to list the loans of a user. An empty Status lists all loans.
type Query struct {
	UserID uuid.UUID
	Status core.LoanStatus
}

// BuildQuery creates a new Query.
func BuildQuery(userID uuid.UUID, status core.LoanStatus) Query {
	return Query{UserID: userID, Status: status}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
